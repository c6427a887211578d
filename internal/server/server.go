package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/batcher"
	"github.com/dushyant25398/Persistent-Systems/internal/config"
	"github.com/dushyant25398/Persistent-Systems/internal/handler"
	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/model"
	"github.com/dushyant25398/Persistent-Systems/internal/websocket"
)

// Deps are the collaborators built by the caller before the server.
type Deps struct {
	Logger   zerolog.Logger
	NewRelic *newrelic.Application
	Sinks    []sinks.Sink
}

// Server holds the echo listener, the optional admin listener and the
// record consumers behind them.
type Server struct {
	Echo   *echo.Echo
	Admin  *echo.Echo // nil unless admin.enabled
	Config *config.Config

	logger       zerolog.Logger
	batcher      *batcher.Batcher // nil unless archive is enabled
	hub          *websocket.Hub // nil unless admin.enabled
	stopHub      context.CancelFunc
	recent       *RecentRecordsStore
	status       *ArchiveStatusStore
	shuttingDown atomic.Bool
}

// New builds both listeners and registers their routes. It does not bind any port.
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	s := &Server{
		Config: cfg,
		logger: logger,
		recent: newRecentRecordsStore(0),
		status: &ArchiveStatusStore{},
	}

	var consumers fanout
	if cfg.Admin.Enabled {
		s.recent = newRecentRecordsStore(cfg.Admin.RecentLimit)
		hubCtx, stopHub := context.WithCancel(context.Background())
		s.hub = websocket.NewHub(logger)
		s.stopHub = stopHub
		go s.hub.Run(hubCtx)
		consumers = append(consumers, s.recent, s.hub)
	}

	if cfg.Archive.Enabled && len(deps.Sinks) > 0 {
		names := make([]string, 0, len(deps.Sinks))
		for _, sk := range deps.Sinks {
			names = append(names, sk.Name())
		}
		bc := batcher.DefaultBatcherConfig()
		bc.MaxBatchSize = cfg.Archive.MaxBatchSize
		bc.FlushInterval = cfg.Archive.FlushEvery()
		bc.QueueSize = cfg.Archive.QueueSize
		s.batcher = batcher.NewBatcher(bc, deps.Sinks, logger, &batcher.BatcherOpts{
			OnFlush: s.status.SetLastFlush,
		})
		s.status.enabled = true
		s.status.sinks = names
		s.status.counters = s.batcher
		consumers = append(consumers, s.batcher)
		logger.Info().Strs("sinks", names).Int("batch", bc.MaxBatchSize).Dur("interval", bc.FlushInterval).Msg("archive enabled")
	}

	echoHandler := &handler.EchoHandler{Logger: logger}
	if len(consumers) > 0 {
		echoHandler.Buffer = consumers
	}

	s.Echo = newEcho(cfg.Server, logger, deps.NewRelic)
	s.Echo.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	register(s.Echo, echoRoutes(echoHandler))

	if cfg.Admin.Enabled {
		adminHandler := &handler.AdminHandler{
			Recent:  s.recent,
			Status:  s.status.Get,
			Archive: archiveBrowser(deps.Sinks),
			Ready:   s.ready,
		}
		adminCfg := cfg.Server
		adminCfg.AccessLog = false
		// the tail endpoint holds its connection open
		adminCfg.WriteTimeout = 0
		s.Admin = newEcho(adminCfg, logger.With().Str("listener", "admin").Logger(), nil)
		register(s.Admin, adminRoutes(adminHandler, s.hub.ServeWS))
	}

	return s
}

func newEcho(cfg config.ServerConfig, logger zerolog.Logger, nrApp *newrelic.Application) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = seconds(cfg.ReadTimeout)
	e.Server.ReadHeaderTimeout = seconds(cfg.ReadHeaderTimeout)
	e.Server.WriteTimeout = seconds(cfg.WriteTimeout)
	e.Server.IdleTimeout = seconds(cfg.IdleTimeout)

	e.Use(recoverer(logger))
	if cfg.AccessLog {
		e.Use(accessLog(logger))
	}
	if nrApp != nil {
		e.Use(nrecho.Middleware(nrApp))
	}
	return e
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// archiveBrowser returns the first sink whose archive can be read back.
func archiveBrowser(out []sinks.Sink) sinks.ArchiveBrowser {
	for _, sk := range out {
		if b, ok := sk.(sinks.ArchiveBrowser); ok {
			return b
		}
	}
	return nil
}

func (s *Server) ready(context.Context) error {
	if s.shuttingDown.Load() {
		return errors.New("shutting down")
	}
	return nil
}

// Start binds the listeners and blocks until ctx is cancelled or a listener
// fails. Either way it shuts down gracefully before returning. A bind failure
// is returned before anything is served.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Config.Server.Address()
	if err := listen(s.Echo, addr); err != nil {
		return s.abort(fmt.Errorf("echo listener %s: %w", addr, err))
	}
	var adminAddr string
	if s.Admin != nil {
		adminAddr = s.Config.Admin.Address()
		if err := listen(s.Admin, adminAddr); err != nil {
			_ = s.Echo.Listener.Close()
			return s.abort(fmt.Errorf("admin listener %s: %w", adminAddr, err))
		}
	}

	errCh := make(chan error, 2)
	bound := s.Echo.Listener.Addr().String()
	serve(s.Echo, addr, "echo listener", errCh)
	s.logger.Info().Str("addr", bound).Msg("echo listener started")
	if s.Admin != nil {
		bound = s.Admin.Listener.Addr().String()
		serve(s.Admin, adminAddr, "admin listener", errCh)
		s.logger.Info().Str("addr", bound).Msg("admin listener started")
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutdown requested")
	case runErr = <-errCh:
		s.logger.Error().Err(runErr).Msg("listener failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(s.Config.Server.ShutdownTimeout))
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// listen binds addr up front so echo serves on an already open socket.
func listen(e *echo.Echo, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	e.Listener = ln
	return nil
}

func serve(e *echo.Echo, addr, name string, errCh chan<- error) {
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s %s: %w", name, addr, err)
		}
	}()
}

// abort releases the consumers after a failed start.
func (s *Server) abort(startErr error) error {
	s.logger.Error().Err(startErr).Msg("listener failed")
	ctx, cancel := context.WithTimeout(context.Background(), seconds(s.Config.Server.ShutdownTimeout))
	defer cancel()
	return errors.Join(startErr, s.Shutdown(ctx))
}

// Shutdown drains in-flight echo requests, flushes the archive and then stops
// the admin listener. Readiness fails from the first moment.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shuttingDown.Store(true)

	var errs []error
	if err := s.Echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("echo listener: %w", err))
	}
	if s.batcher != nil {
		if err := s.batcher.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("archive flush: %w", err))
		}
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	if s.Admin != nil {
		if err := s.Admin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("admin listener: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Status reports the archive pipeline.
func (s *Server) Status() model.ArchiveStatus {
	return s.status.Get()
}
