// Package daemon coordinates the long-running docket process.
//
// It wires configuration, the Redis-backed queue store, the lock service, and
// the maintenance janitor into a single lifecycle with flock-based locking to
// prevent multiple instances.
package daemon
