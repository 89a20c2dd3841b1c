package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/controlroom/internal/api/http"
	"github.com/GriffinCanCode/controlroom/internal/api/middleware"
	"github.com/GriffinCanCode/controlroom/internal/api/ws"
	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/domain/runner"
	"github.com/GriffinCanCode/controlroom/internal/domain/supervisor"
	"github.com/GriffinCanCode/controlroom/internal/domain/workspace"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/config"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/logging"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// ScopeConfigReload tags backend errors raised by the config watcher
const ScopeConfigReload = "config-reload"

// ShutdownTimeout bounds Close
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	supervisor *supervisor.Supervisor
	runner     *runner.Runner
	store      *config.Store
	resolver   *workspace.Resolver
	hub        *ws.Hub
	sink       *events.Multi
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	version    string

	mu      sync.Mutex
	watcher *config.Watcher
	http    *http.Server
}

// NewServer creates a new server instance with a logger built from cfg
func NewServer(cfg *config.Config, version string) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, logger, version)
}

// New creates a server around an existing logger. The control room file
// is loaded and applied before New returns.
func New(cfg *config.Config, logger *logging.Logger, version string) (*Server, error) {
	log := logger.Logger

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	store, err := config.NewStore(cfg.ControlRoom.Path, log)
	if err != nil {
		return nil, err
	}
	initial, err := store.Reload()
	if err != nil {
		return nil, fmt.Errorf("failed to load control room config: %w", err)
	}

	log.Info("Initializing control room",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("config", store.Path()),
		zap.Int("services", len(initial.Services)),
	)

	metrics := monitoring.NewMetrics()
	hub := ws.NewHub(log, metrics)
	sink := events.NewMulti(log, hub, metrics, events.NewLogSink(log))

	sv := supervisor.New(log, sink, supervisor.Config{
		LogCapacity:        cfg.Supervisor.LogCapacity,
		StopTimeout:        cfg.Supervisor.StopTimeout,
		StopCommandTimeout: cfg.Supervisor.StopCommandTimeout,
		BaseDir:            wd,
	})
	resolver := workspace.NewResolver(wd, nil)
	rn := runner.New(log, sink, resolver, runner.Config{
		CancelTimeout: cfg.Runner.CancelTimeout,
		OutputDrain:   cfg.Runner.OutputDrain,
	})
	metrics.ObserveRuns(func() int { return len(rn.List()) })

	s := &Server{
		supervisor: sv,
		runner:     rn,
		store:      store,
		resolver:   resolver,
		hub:        hub,
		sink:       sink,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		version:    version,
	}
	s.apply(initial)
	s.router = s.routes()

	log.Info("Server initialized successfully")
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	log := s.logger.Logger
	cfg := s.config

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		log.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Services:   s.supervisor,
		Runs:       s.runner,
		Config:     s,
		Workspaces: s.resolver,
		Observers:  s.hub,
		Version:    s.version,
	})
	handlers.Register(router)

	router.GET("/stream", s.hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return router
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Current returns the active control room configuration
func (s *Server) Current() types.ControlRoomConfig {
	return s.store.Current()
}

// Apply reloads the control room file and replaces the service and
// workspace definitions. A rejected file leaves everything unchanged.
func (s *Server) Apply() (types.ControlRoomConfig, error) {
	cfg, err := s.store.Reload()
	if err != nil {
		return cfg, err
	}
	s.apply(cfg)
	return cfg, nil
}

func (s *Server) apply(cfg types.ControlRoomConfig) {
	s.supervisor.SetServices(cfg.Services)
	s.resolver.Set(cfg.Workspaces)
}

// watch starts the config watcher when enabled and a file exists
func (s *Server) watch(ctx context.Context) {
	if !s.config.ControlRoom.Watch || s.store.Path() == "" {
		return
	}

	w, err := config.Watch(ctx, s.store, config.DefaultDebounce, s.apply, func(err error) {
		s.sink.Emit(events.BackendError(ScopeConfigReload, err.Error(), nil))
	})
	if err != nil {
		s.logger.Warn("Config watcher unavailable", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// closes the server
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.watch(ctx)

	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		closeCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return errors.Join(err, s.Close(closeCtx))
	case <-ctx.Done():
		closeCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.Close(closeCtx)
	}
}

// Close gracefully shuts down the server: HTTP first, then every service
// and run concurrently
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.mu.Lock()
	srv, watcher := s.http, s.watcher
	s.http, s.watcher = nil, nil
	s.mu.Unlock()

	// observers hold hijacked connections that Shutdown does not track
	s.hub.Close()

	var httpErr error
	if srv != nil {
		httpErr = srv.Shutdown(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.supervisor.Shutdown(gctx)
	})
	g.Go(func() error {
		return s.runner.Shutdown(gctx)
	})
	if watcher != nil {
		g.Go(watcher.Close)
	}
	err := errors.Join(httpErr, g.Wait())
	if err != nil {
		s.logger.Error("Shutdown incomplete", zap.Error(err))
	} else {
		s.logger.Info("Server stopped")
	}
	s.logger.Sync()
	return err
}
