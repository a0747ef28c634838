// Package janitor runs periodic queue maintenance: purging reviewed records
// older than the retention window and reaping abandoned locks.
package janitor
