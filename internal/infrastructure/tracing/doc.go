// Package tracing carries the request id of an HTTP request through to the
// session server.
//
// The HTTP layer stores the id on the request context with WithTraceID.
// UnaryClientInterceptor copies it into outgoing gRPC metadata under
// x-request-id, and UnaryServerInterceptor restores it on the far side, so
// log lines on both ends of an open call share one id. Opens run after the
// HTTP request returns; context values survive that hand-off, cancellation
// does not.
//
// Example Usage:
//
//	conn, err := grpc.NewClient(addr,
//	    grpc.WithUnaryInterceptor(tracing.UnaryClientInterceptor(logger)))
package tracing
