package tokeninfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// ErrInvalidToken means the server does not know the token
var ErrInvalidToken = errors.New("invalid sharing token")

// Cache is where fetched token info is kept
type Cache interface {
	TokenInfo(token string) (*types.TokenInfo, bool)
	PutTokenInfo(info types.TokenInfo) error
}

// Config configures a Fetcher
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RequestsPerSecond limits outbound fetches; zero means unlimited
	RequestsPerSecond float64
}

// DefaultConfig returns the fetcher settings for baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
	}
}

// Fetcher fills the token-info cache from the server. A token view needs
// its token info before it can show a title or decide on the reveal
// interstitial, so views prefetch through here. Concurrent fetches of the
// same token share one request.
type Fetcher struct {
	resty   *resty.Client
	cache   Cache
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *zap.Logger
}

// New creates a Fetcher
func New(cfg Config, cache Cache, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Shell-TokenInfo/1.0").
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetJSONMarshaler(sonic.Marshal)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}

	return &Fetcher{
		resty:   client,
		cache:   cache,
		limiter: limiter,
		logger:  logger.With(zap.String("component", "tokeninfo")),
	}
}

// Prefetch returns the info for token, fetching and caching it if needed
func (f *Fetcher) Prefetch(ctx context.Context, token string) (*types.TokenInfo, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if info, ok := f.cache.TokenInfo(token); ok {
		return info, nil
	}

	result, err, shared := f.group.Do(token, func() (any, error) {
		// another caller may have filled the cache while we waited
		if info, ok := f.cache.TokenInfo(token); ok {
			return info, nil
		}
		return f.fetch(context.WithoutCancel(ctx), token)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		f.logger.Debug("Shared token info fetch")
	}
	return result.(*types.TokenInfo), nil
}

func (f *Fetcher) fetch(ctx context.Context, token string) (*types.TokenInfo, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var info types.TokenInfo
	resp, err := f.resty.R().
		SetContext(ctx).
		SetPathParam("token", token).
		SetResult(&info).
		ForceContentType("application/json").
		Get("/{token}")
	if err != nil {
		return nil, fmt.Errorf("fetch token info: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrInvalidToken
	case resp.IsError():
		return nil, fmt.Errorf("fetch token info: server returned %s", resp.Status())
	}

	info.Token = token
	if err := f.cache.PutTokenInfo(info); err != nil {
		f.logger.Warn("Failed to cache token info", zap.Error(err))
	}
	return &info, nil
}
