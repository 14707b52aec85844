package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// RemoteError is a failure reported by the session server. Its Error text
// is the server's message alone, which is what the view shows the user.
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client issues open calls to the session server through a circuit breaker
type Client struct {
	conn    *grpc.ClientConn
	invoker grpc.ClientConnInterface
	breaker *resilience.Breaker
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each call
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records call outcomes
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// Dial creates a client for the session server at addr. The connection is
// established lazily on the first call.
func Dial(addr string, opts ...Option) (*Client, error) {
	c := NewClient(nil, opts...)
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:    60 * time.Second,
			Timeout: 20 * time.Second,
		}),
		grpc.WithUnaryInterceptor(tracing.UnaryClientInterceptor(c.logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial session server: %w", err)
	}

	c.conn = conn
	c.invoker = conn
	return c, nil
}

// NewClient wraps an existing connection
func NewClient(cc grpc.ClientConnInterface, opts ...Option) *Client {
	c := &Client{
		invoker: cc,
		timeout: 30 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = resilience.New("sessions", resilience.Settings{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: isTransportFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// Close closes the connection if the client owns one
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// OpenGrain opens a session on a grain the caller owns
func (c *Client) OpenGrain(ctx context.Context, grainID string) (types.OpenOutcome, error) {
	req, err := structpb.NewStruct(map[string]any{fieldGrainID: grainID})
	if err != nil {
		return nil, err
	}
	return c.open(ctx, MethodOpenGrain, req)
}

// OpenToken opens a session through a sharing token
func (c *Client) OpenToken(ctx context.Context, tokenReq types.TokenRequest) (types.OpenOutcome, error) {
	req, err := structpb.NewStruct(map[string]any{
		fieldToken:     tokenReq.Token,
		fieldIncognito: tokenReq.Incognito,
	})
	if err != nil {
		return nil, err
	}
	return c.open(ctx, MethodOpenToken, req)
}

func (c *Client) open(ctx context.Context, method string, req *structpb.Struct) (types.OpenOutcome, error) {
	resp, err := resilience.Call(ctx, c.breaker, func(ctx context.Context) (*structpb.Struct, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp := &structpb.Struct{}
		if err := c.invoker.Invoke(ctx, fullMethod(method), req, resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	c.metrics.RecordRemoteCall(method, callCode(err).String())
	if err != nil {
		return nil, toRemoteError(err)
	}
	return decodeOutcome(resp)
}

func callCode(err error) codes.Code {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return codes.Unavailable
	default:
		return status.Code(err)
	}
}

// isTransportFailure counts only errors that say the server is unhealthy;
// refusals such as NotFound or PermissionDenied leave the breaker alone
func isTransportFailure(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Internal, codes.Unknown:
		return true
	default:
		return false
	}
}

func toRemoteError(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return &RemoteError{Code: codes.Unavailable, Message: "session server unavailable: " + err.Error()}
	}
	st := status.Convert(err)
	return &RemoteError{Code: st.Code(), Message: st.Message()}
}
