// Package audit persists human-review work items in Redis and exposes helpers
// for driving their lifecycle.
//
// The Store manages three structures under a shared key prefix: an id list
// ordering the review worklist (head-pushed, newest first), a status hash, and
// a data hash holding the JSON-serialized record. Multi-step mutations run as
// single Lua scripts so the existence check and the writes apply atomically
// relative to concurrent callers.
//
// Expected business outcomes (duplicate insert, missing record) are reported
// as boolean returns; infrastructure errors propagate to the caller.
//
// Treat this package as the single source of truth for review-queue semantics;
// when you add statuses or record fields, update record.go and the scripts
// together.
package audit
