package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldMemoryID is the standardized structured logging key for audit record identifiers.
	FieldMemoryID = "memory_id"
	// FieldStatus is the standardized structured logging key for audit statuses.
	FieldStatus = "status"
	// FieldLockKey is the standardized structured logging key for distributed lock keys.
	FieldLockKey = "lock_key"
	// FieldCount is the standardized structured logging key for batch operation counts.
	FieldCount = "count"
)
