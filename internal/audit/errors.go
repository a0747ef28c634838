package audit

import "errors"

var (
	// ErrInvalidStatus reports a review status outside the accepted
	// dispositions (approved, rejected).
	ErrInvalidStatus = errors.New("audit: invalid status")

	// ErrEmptyMemoryID reports a submission or lookup without an identifier.
	ErrEmptyMemoryID = errors.New("audit: empty memory id")
)
