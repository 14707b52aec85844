package tracing

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// MetadataKey is the gRPC metadata key holding the trace id
const MetadataKey = "x-request-id"

type traceKey struct{}

// WithTraceID returns a context carrying id
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext returns the trace id on ctx, "" if none
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// inject adds the trace id of ctx to its outgoing metadata
func inject(ctx context.Context) context.Context {
	id := FromContext(ctx)
	if id == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, id)
}

// extract moves an incoming trace id onto ctx
func extract(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	if values := md.Get(MetadataKey); len(values) > 0 {
		return WithTraceID(ctx, values[0])
	}
	return ctx
}
