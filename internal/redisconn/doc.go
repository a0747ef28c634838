// Package redisconn constructs Redis clients from docket configuration.
//
// Every subsystem that talks to the backing store (audit queue, distributed
// lock, migration) shares a client built here so connection timeouts and URL
// parsing rules stay in one place.
package redisconn
