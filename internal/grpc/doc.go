// Package grpc talks to the session server over gRPC.
//
// The service is shell.Sessions with two unary methods, OpenGrain and
// OpenToken. Requests and responses are google.protobuf.Struct values:
//
//	OpenGrain  {grain_id}          -> {grain_id, session_id, title?}
//	OpenToken  {token, incognito}  -> {grain_id, session_id, title?} | {redirect_to_grain}
//
// Client implements the grain view's Opener. Calls go through a circuit
// breaker that trips only on transport-level failures; server refusals come
// back as *RemoteError carrying the server's message. Dial installs the
// tracing interceptor so the HTTP request id reaches the server. Register and
// ServiceDesc serve the same protocol, for tests and local servers.
//
// Example Usage:
//
//	client, err := grpc.Dial("localhost:50051", grpc.WithLogger(logger))
//	outcome, err := client.OpenGrain(ctx, "g1")
package grpc
