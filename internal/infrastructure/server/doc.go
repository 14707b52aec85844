// Package server assembles the shell: configuration, logging, metrics, the
// store, the remote session client and feed, the view registry and the
// HTTP API.
package server
