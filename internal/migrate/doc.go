// Package migrate imports audit records from the legacy SQLite database into
// the Redis-backed queue. The import is idempotent: records whose memory ID
// already exists in Redis are skipped.
package migrate
