package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/config"
	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
	"github.com/preston-bernstein/gridiron-service/internal/simulation/fixture"
	"github.com/preston-bernstein/gridiron-service/internal/store"
	"github.com/preston-bernstein/gridiron-service/internal/teststubs"
	"github.com/preston-bernstein/gridiron-service/internal/testutil"
)

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	srv, err := newServerWithStore(context.Background(), cfg, nil, nil, store.NewMemoryStore(), fixture.New())
	if err != nil {
		t.Fatalf("building server: %v", err)
	}
	return srv
}

func TestServerServesHealthAndTicks(t *testing.T) {
	srv := newTestServer(t, config.Config{TickSecret: "secret"})
	router := srv.Handler()

	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", healthRec.Code)
	}

	missingRec := httptest.NewRecorder()
	router.ServeHTTP(missingRec, httptest.NewRequest(http.MethodGet, "/seasons/current", nil))
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first tick, got %d", missingRec.Code)
	}

	tickRec := testutil.ServeRequest(router, testutil.TickRequest("secret"))
	if tickRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /tick, got %d", tickRec.Code)
	}
	var action orchestrator.Action
	if err := json.NewDecoder(tickRec.Body).Decode(&action); err != nil {
		t.Fatalf("failed to decode tick response: %v", err)
	}
	if action.Kind != orchestrator.KindCreateSeason {
		t.Fatalf("expected create_season, got %q", action.Kind)
	}

	seasonRec := httptest.NewRecorder()
	router.ServeHTTP(seasonRec, httptest.NewRequest(http.MethodGet, "/seasons/current", nil))
	if seasonRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /seasons/current after tick, got %d", seasonRec.Code)
	}
}

func TestServerBootstrapsLeague(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	list, err := srv.teamsService.Teams(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 32 {
		t.Fatalf("expected 32 teams, got %d", len(list))
	}
	roster, err := srv.playersService.Roster(context.Background(), list[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) == 0 {
		t.Fatalf("expected roster for %s", list[0].ID)
	}
}

func TestServerWithoutSecretDisablesTick(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tick", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when tick secret unset, got %d", rec.Code)
	}
}

func TestServerTickLoopFollowsInterval(t *testing.T) {
	if srv := newTestServer(t, config.Config{}); srv.poller != nil {
		t.Fatalf("expected no tick loop without interval")
	}
	if srv := newTestServer(t, config.Config{TickInterval: time.Hour}); srv.poller == nil {
		t.Fatalf("expected tick loop with interval")
	}
}

func TestNewConstructsServer(t *testing.T) {
	cfg := config.Config{
		Port:    "0",
		Store:   config.StoreConfig{Kind: config.StoreMemory},
		Engine:  config.EngineConfig{Kind: config.EngineFixture},
		Metrics: config.MetricsConfig{Enabled: false},
	}
	srv, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv == nil || srv.Handler() == nil {
		t.Fatalf("expected server with handler")
	}
}

func TestNewFailsOnBadEngineConfig(t *testing.T) {
	cfg := config.Config{
		Engine: config.EngineConfig{Kind: config.EngineHTTP},
	}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for http engine without url")
	}
}

func TestGracefulShutdownCallsStopAndShutdown(t *testing.T) {
	p := &stubPoller{}
	httpSrv := &testutil.FakeHTTPServer{}
	closed := 0

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, p)
	srv.closeStore = func() error { closed++; return nil }
	srv.gracefulShutdown()

	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if httpSrv.ShutdownCalls() != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls())
	}
	if closed != 1 {
		t.Fatalf("expected store closed once, got %d", closed)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	p := &stubPoller{}
	blocking := &testutil.FakeHTTPServer{Hold: make(chan struct{})}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newServerWithDeps(config.Config{}, nil, blocking, p)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.ShutdownCalls() != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.ShutdownCalls())
	}
	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownContinuesWhenPollerStopErrors(t *testing.T) {
	p := &stubPoller{Err: errors.New("stop failure")}
	httpSrv := &testutil.FakeHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, httpSrv, p)
	srv.closeStore = func() error { return errors.New("close failure") }
	srv.gracefulShutdown()

	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if httpSrv.ShutdownCalls() != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls())
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, &testutil.FakeHTTPServer{ListenErr: errors.New("listen failure")}, &stubPoller{})

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}

	wg.Wait()
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plr := &stubPoller{}
	httpSrv := &testutil.FakeHTTPServer{ListenErr: http.ErrServerClosed}
	srv := newServerWithDeps(config.Config{}, nil, httpSrv, plr)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	if plr.StartCalls != 1 {
		t.Fatalf("expected poller Start called once, got %d", plr.StartCalls)
	}
	if plr.StopCalls != 1 {
		t.Fatalf("expected poller Stop called once, got %d", plr.StopCalls)
	}
	if httpSrv.ShutdownCalls() != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.ShutdownCalls())
	}
}

func TestRunWithoutTickLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	httpSrv := &testutil.FakeHTTPServer{ListenErr: http.ErrServerClosed}
	srv := newServerWithDeps(config.Config{}, nil, httpSrv, nil)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}
	if httpSrv.ShutdownCalls() != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.ShutdownCalls())
	}
}

func TestServerTickReportsEngineFailure(t *testing.T) {
	engine := &teststubs.StubEngine{Err: errors.New("engine down")}
	srv, err := newServerWithStore(context.Background(), config.Config{TickSecret: "secret"}, nil, nil, store.NewMemoryStore(), engine)
	if err != nil {
		t.Fatalf("building server: %v", err)
	}

	tick := func() orchestrator.Action {
		rec := testutil.ServeRequest(srv.Handler(), testutil.TickRequest("secret"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from /tick, got %d", rec.Code)
		}
		var action orchestrator.Action
		if err := json.NewDecoder(rec.Body).Decode(&action); err != nil {
			t.Fatalf("failed to decode tick response: %v", err)
		}
		return action
	}

	if got := tick(); got.Kind != orchestrator.KindCreateSeason {
		t.Fatalf("expected create_season, got %q", got.Kind)
	}
	got := tick()
	if got.Kind != orchestrator.KindIdle || got.Reason != orchestrator.ReasonSimulationFailed {
		t.Fatalf("expected idle simulation_failed, got %+v", got)
	}
	if engine.Calls.Load() != 1 {
		t.Fatalf("expected one engine call, got %d", engine.Calls.Load())
	}
}
