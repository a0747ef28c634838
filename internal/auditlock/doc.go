// Package auditlock provides cross-process mutual exclusion for review work,
// keyed by arbitrary strings (typically "memory:<id>").
//
// A lock is a Redis key holding a random token with a TTL; release deletes
// the key only when the token still matches, so an expired lock taken over by
// another holder is never removed by the original owner.
//
// Acquisition is fallible by design: callers must treat ErrNotAcquired as
// "someone else is processing this" and skip the work. The maintenance
// helpers (IsLocked, ForceRelease, CleanupExpired) degrade to zero values on
// backend failure rather than propagating, because losing a lock-management
// call should not crash a review-processing task.
package auditlock
