package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	apihttp "github.com/GriffinCanCode/AgentOS/shell/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/shell/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/grainview"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/grpc"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/icons"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store/memory"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store/seed"
	"github.com/GriffinCanCode/AgentOS/shell/internal/store/sqlite"
	"github.com/GriffinCanCode/AgentOS/shell/internal/tokeninfo"
	"github.com/GriffinCanCode/AgentOS/shell/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// dataStore is what the server needs from either store driver
type dataStore interface {
	grainview.Store
	store.Sink
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	shell   *shell.Shell
	client  *grpc.Client
	feed    *ws.Feed
	closeDB func() error
	logger  *zap.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	logger.Info("Initializing shell server",
		zap.String("port", cfg.Server.Port),
		zap.String("session_addr", cfg.Remote.SessionAddr),
		zap.String("store", cfg.Store.Driver),
	)

	// Metrics first, other components record into it
	metrics := monitoring.NewMetrics()

	ds, closeDB, err := openStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	client, err := grpc.Dial(cfg.Remote.SessionAddr,
		grpc.WithTimeout(cfg.Remote.Timeout),
		grpc.WithLogger(logger),
		grpc.WithMetrics(metrics),
	)
	if err != nil {
		_ = closeDB()
		return nil, fmt.Errorf("failed to create session client: %w", err)
	}
	logger.Info("Session client ready", zap.String("addr", cfg.Remote.SessionAddr))

	// Remote feed when configured, otherwise sessions live in the memory store
	var (
		sessionFeed grainview.SessionFeed
		remoteFeed  *ws.Feed
	)
	memStore, isMemory := ds.(*memory.Store)
	switch {
	case cfg.Remote.FeedURL != "":
		remoteFeed = ws.NewFeed(cfg.Remote.FeedURL, logger, metrics)
		sessionFeed = remoteFeed
	case isMemory:
		sessionFeed = memStore
	default:
		logger.Warn("No session feed available, remote session teardown will go unnoticed")
	}

	var prefetcher shell.Prefetcher
	if cfg.Remote.TokenInfoURL != "" {
		prefetcher = tokeninfo.New(tokeninfo.DefaultConfig(cfg.Remote.TokenInfoURL), ds, logger)
	}

	views := registry.NewManager().WithMetrics(metrics)
	sh := shell.New(shell.Deps{
		Store:      ds,
		Opener:     client,
		Feed:       sessionFeed,
		Registry:   views,
		Prefetcher: prefetcher,
		Settings: grainview.Settings{
			ProductName: cfg.Shell.ProductName,
			Hosts: icons.Hosts{
				Protocol: cfg.Shell.Protocol,
				Wildcard: cfg.Shell.WildcardHost,
			},
		},
		Logger:  logger,
		Metrics: metrics,
	})

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))

		if cfg.RateLimit.GlobalRPS > 0 {
			global := middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimit.GlobalRPS,
				Burst:             cfg.RateLimit.GlobalBurst,
			}
			if global.Burst == 0 {
				global.Burst = global.RequestsPerSecond
			}
			logger.Info("Global rate limit enabled",
				zap.Int("rps", global.RequestsPerSecond),
				zap.Int("burst", global.Burst),
			)
			router.Use(middleware.GlobalRateLimit(global))
		}
	}

	handlers := apihttp.NewHandlers(sh, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	handlers.Register(router)

	// Serve the memory store's sessions to other shells
	if isMemory {
		router.GET("/feed", ws.NewHandler(memStore, logger).HandleConnection)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           gzhttp.GzipHandler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shell:   sh,
		client:  client,
		feed:    remoteFeed,
		closeDB: closeDB,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// openStore opens the configured store driver and applies the seed fixture
func openStore(cfg config.StoreConfig, logger *zap.Logger) (dataStore, func() error, error) {
	var (
		ds      dataStore
		closeDB = func() error { return nil }
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(context.Background(), cfg.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
		ds, closeDB = db, db.Close
		logger.Info("Opened sqlite store", zap.String("path", cfg.Path))
	default:
		ds = memory.New()
	}

	if cfg.Seed != "" {
		stats, err := seed.LoadGlob(cfg.Seed, ds)
		if err != nil {
			_ = closeDB()
			return nil, nil, fmt.Errorf("failed to seed store: %w", err)
		}
		logger.Info("Seeded store",
			zap.String("file", cfg.Seed),
			zap.Int("grains", stats.Grains),
			zap.Int("tokens", stats.Tokens),
			zap.Int("sessions", stats.Sessions),
		)
	}
	return ds, closeDB, nil
}

// Handler returns the HTTP handler with compression applied
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address and serves until Close
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until the server stops. A clean
// shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	if limit := s.config.Server.MaxConns; limit > 0 {
		ln = netutil.LimitListener(ln, limit)
	}
	s.logger.Info("Starting HTTP server",
		zap.String("addr", ln.Addr().String()),
		zap.Int("max_conns", s.config.Server.MaxConns))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server and its connections
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}

	// Views stop watching their sessions before the feed goes away
	for _, view := range s.shell.Registry().List() {
		s.shell.Close(view.ID())
	}

	if s.feed != nil {
		if err := s.feed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close session feed: %w", err))
		}
	}
	if err := s.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close session client: %w", err))
	}
	if err := s.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	for _, err := range errs {
		s.logger.Error("Shutdown error", zap.Error(err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
