// Package sqlite is a durable implementation of the shell's data store on
// modernc.org/sqlite (pure Go, no cgo).
//
// The schema is created on Open. Nested records (manifests, token owners,
// token info, view info) live in JSON columns. Read failures other than
// "no rows" are logged and reported as absent records, so a broken
// database degrades the shell's titles and icons instead of failing them.
//
// The sqlite store does not deliver session change events; pair it with the
// websocket feed.
package sqlite
