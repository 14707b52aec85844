// Package memory is an in-memory implementation of the shell's data store
// and session change feed.
//
// Reads return copies, so callers may keep or modify what they get back.
// Feed handlers run on the goroutine that changed the session, after every
// store lock has been released.
package memory
