package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestWithTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FromContext(ctx))
	assert.Equal(t, ctx, WithTraceID(ctx, ""))
	assert.Equal(t, "req-1", FromContext(WithTraceID(ctx, "req-1")))
}

func TestTraceIDSurvivesWithoutCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(WithTraceID(context.Background(), "req-1"))
	detached := context.WithoutCancel(ctx)
	cancel()

	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-1", FromContext(detached))
}

func TestUnaryClientInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	intercept := UnaryClientInterceptor(zap.New(core))

	var sent metadata.MD
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		sent, _ = metadata.FromOutgoingContext(ctx)
		return status.Error(codes.NotFound, "no such grain")
	}

	ctx := WithTraceID(context.Background(), "req-1")
	err := intercept(ctx, "/shell.Sessions/OpenGrain", nil, nil, nil, invoker)

	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, []string{"req-1"}, sent.Get(MetadataKey))

	entries := logs.FilterMessage("gRPC call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "NotFound", entries[0].ContextMap()["code"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
}

func TestUnaryClientInterceptorWithoutTraceID(t *testing.T) {
	intercept := UnaryClientInterceptor(zap.NewNop())

	var sent metadata.MD
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		sent, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}

	require.NoError(t, intercept(context.Background(), "/shell.Sessions/OpenGrain", nil, nil, nil, invoker))
	assert.Empty(t, sent.Get(MetadataKey))
}

func TestUnaryServerInterceptor(t *testing.T) {
	intercept := UnaryServerInterceptor(zap.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/shell.Sessions/OpenToken"}
	failure := errors.New("boom")

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = FromContext(ctx)
		return "ok", failure
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataKey, "req-2"))
	resp, err := intercept(ctx, nil, info, handler)

	assert.Equal(t, "ok", resp)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, "req-2", seen)
}
