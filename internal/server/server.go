package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/gridiron-service/internal/app/games"
	"github.com/preston-bernstein/gridiron-service/internal/app/players"
	"github.com/preston-bernstein/gridiron-service/internal/app/teams"
	"github.com/preston-bernstein/gridiron-service/internal/broadcast"
	"github.com/preston-bernstein/gridiron-service/internal/config"
	httpserver "github.com/preston-bernstein/gridiron-service/internal/http"
	"github.com/preston-bernstein/gridiron-service/internal/http/handlers"
	"github.com/preston-bernstein/gridiron-service/internal/http/middleware"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/metrics"
	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
	"github.com/preston-bernstein/gridiron-service/internal/poller"
	"github.com/preston-bernstein/gridiron-service/internal/predictions"
	"github.com/preston-bernstein/gridiron-service/internal/simulation"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

var metricsSetup = metrics.Setup

// Poller is the in-process tick loop; nil when ticks arrive only over HTTP.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

// Server owns the store, the orchestrator and the listeners in front of them.
type Server struct {
	cfg            config.Config
	logger         *slog.Logger
	metrics        *metrics.Recorder
	store          store.Store
	closeStore     func() error
	orchestrator   *orchestrator.Orchestrator
	gamesService   *games.Service
	teamsService   *teams.Service
	playersService *players.Service
	httpServer     httpServer
	metricsServer  httpServer
	poller         Poller
	metricsStop    func(context.Context) error
}

// New constructs a server with the configured store, engine and tick loop.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, nil)

	st, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	engine, err := newEngineFactory(logger, recorder).build(cfg.Engine)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	srv, err := newServerWithStore(ctx, cfg, logger, recorder, st, engine)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	srv.closeStore = closeStore
	srv.metricsServer = metricsSrv
	srv.metricsStop = metricsShutdown
	return srv, nil
}

// newServerWithStore wires every component over an already-open store.
func newServerWithStore(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, st store.Store, engine simulation.Engine) (*Server, error) {
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	gameSvc, teamSvc, playerSvc := buildServices(st)
	if err := bootstrapLeague(ctx, cfg.LeagueFile, teamSvc, playerSvc, logger); err != nil {
		return nil, fmt.Errorf("bootstrapping league: %w", err)
	}

	orch := buildOrchestrator(cfg, st, engine, logger, recorder)

	var plr Poller
	if cfg.TickInterval > 0 {
		plr = poller.New(orch, logger, recorder, cfg.TickInterval)
	}
	httpSrv := buildHTTPServer(cfg, st, gameSvc, teamSvc, playerSvc, orch, logger, recorder, plr)

	return &Server{
		cfg:            cfg,
		logger:         logger,
		metrics:        recorder,
		store:          st,
		orchestrator:   orch,
		gamesService:   gameSvc,
		teamsService:   teamSvc,
		playersService: playerSvc,
		httpServer:     httpSrv,
		poller:         plr,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildServices(st store.Store) (*games.Service, *teams.Service, *players.Service) {
	return games.NewService(st), teams.NewService(st), players.NewService(st)
}

func buildOrchestrator(cfg config.Config, st store.Store, engine simulation.Engine, logger *slog.Logger, recorder *metrics.Recorder) *orchestrator.Orchestrator {
	projector := broadcast.NewProjector(st, broadcast.Config{
		DefaultDuration: cfg.Timing.DefaultGameDuration,
		MaxDuration:     cfg.Timing.MaxGameDuration,
		Intermission:    cfg.Timing.Intermission,
		WeekBreak:       cfg.Timing.WeekBreak,
	}, nil, logger)
	return orchestrator.New(st, engine, predictions.NewLoggingScorer(predictions.Noop{}, logger), projector, logger, recorder, orchestrator.Config{
		Offseason:       cfg.Timing.Offseason,
		Intermission:    cfg.Timing.Intermission,
		WeekBreak:       cfg.Timing.WeekBreak,
		BroadcastBuffer: cfg.Timing.BroadcastBuffer,

		SimulationTimeout: tickWriteTimeout(cfg.Engine),
	})
}

func buildHTTPServer(cfg config.Config, pinger handlers.Pinger, gameSvc *games.Service, teamSvc *teams.Service, playerSvc *players.Service, ticker handlers.Ticker, logger *slog.Logger, recorder *metrics.Recorder, plr Poller) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(gameSvc, teamSvc, playerSvc, pinger, logger, statusFn)
	tick := handlers.NewTickHandler(ticker, cfg.TickSecret, logger)
	router := httpserver.NewRouter(handler, tick)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	return newNetHTTPServer(cfg.Port, wrapped, tickWriteTimeout(cfg.Engine))
}

// Run starts the tick loop and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.poller != nil {
		s.poller.Start(ctx)
	} else {
		logging.Info(s.logger, "tick loop disabled, waiting for external ticks")
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.poller != nil {
		if err := s.poller.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop tick loop", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			logging.Warn(s.logger, "store close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), cfg.Metrics)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && cfg.Metrics.Enabled {
		metricsSrv = newNetHTTPServer(cfg.Metrics.Port, handler, writeTimeout)
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
