// Package main is the entry point for the grain shell server.
//
// The shell keeps one view per open tab onto a grain, opens sessions for
// those views against the session service and watches the session feed for
// remote teardown.
//
// Architecture:
//
//	Browser → Shell API (gin) → Session service (gRPC)
//	                          → Session feed (websocket)
//	                          → Token info (HTTP)
//	                          → Store (memory | sqlite)
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Against a local session service, seeded from a fixture
//	./server -port 8000 -sessions localhost:50051 -seed fixtures/dev.yaml
//
//	# Durable store, console logs
//	STORE_DRIVER=sqlite STORE_PATH=shell.db LOG_DEV=true ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
