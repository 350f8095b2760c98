package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/preston-bernstein/gridiron-service/internal/app/games"
	"github.com/preston-bernstein/gridiron-service/internal/app/players"
	"github.com/preston-bernstein/gridiron-service/internal/app/teams"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/poller"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the read-only league API.
type Handler struct {
	games    *games.Service
	teams    *teams.Service
	players  *players.Service
	pinger   Pinger
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no tick loop runs.
func NewHandler(gameSvc *games.Service, teamSvc *teams.Service, playerSvc *players.Service, pinger Pinger, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		games:    gameSvc,
		teams:    teamSvc,
		players:  playerSvc,
		pinger:   pinger,
		logger:   logger,
		statusFn: statusFn,
	}
}

func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch path := r.URL.Path; {
	case path == "/health":
		h.Health(w, r)
	case path == "/ready":
		h.Ready(w, r)
	case path == "/seasons/current":
		h.CurrentSeason(w, r)
	case path == "/seasons/current/games":
		h.WeekGames(w, r)
	case path == "/seasons/current/standings":
		h.Standings(w, r)
	case path == "/teams":
		h.Teams(w, r)
	case strings.HasPrefix(path, "/teams/") && strings.HasSuffix(path, "/players"):
		h.Roster(w, r)
	case strings.HasPrefix(path, "/games/"):
		h.GameByID(w, r)
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness: the store answers and the tick loop, if any, is healthy.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			logging.Warn(loggerFromContext(r, h.logger), "store ping failed", "error", err)
			writeError(w, r, nethttp.StatusServiceUnavailable, "store unavailable", h.logger)
			return
		}
	}
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// CurrentSeason returns the season with the highest number.
func (h *Handler) CurrentSeason(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	season, err := h.games.CurrentSeason(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "season not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, season, h.logger)
}

// WeekGames lists the current season's games for ?week=N, defaulting to the current week.
func (h *Handler) WeekGames(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	week := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, nethttp.StatusBadRequest, "invalid week", h.logger)
			return
		}
		week = n
	}
	view, err := h.games.Week(r.Context(), week)
	if err != nil {
		writeStoreError(w, r, err, "season not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, view, h.logger)
}

// Standings returns the current season's standings, best record first.
func (h *Handler) Standings(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	season, err := h.games.CurrentSeason(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "season not found", h.logger)
		return
	}
	rows, err := h.teams.Standings(r.Context(), season.ID)
	if err != nil {
		writeStoreError(w, r, err, "standings not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{"seasonId": season.ID, "standings": rows}, h.logger)
}

// Teams lists every team.
func (h *Handler) Teams(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	list, err := h.teams.Teams(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "teams not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{"teams": list}, h.logger)
}

// Roster returns /teams/{id}/players.
func (h *Handler) Roster(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	id, ok := pathID(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/teams/"), "/players"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid team id", h.logger)
		return
	}
	team, found, err := h.teams.TeamByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "team not found", h.logger)
		return
	}
	if !found {
		writeError(w, r, nethttp.StatusNotFound, "team not found", h.logger)
		return
	}
	roster, err := h.players.Roster(r.Context(), team.ID)
	if err != nil {
		writeStoreError(w, r, err, "roster not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]any{"team": team, "players": roster}, h.logger)
}

// GameByID returns a game with the events aired so far.
func (h *Handler) GameByID(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !requireMethod(w, r, nethttp.MethodGet, h.logger) {
		return
	}
	id, ok := pathID(strings.TrimPrefix(r.URL.Path, "/games/"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "invalid game id", h.logger)
		return
	}
	view, err := h.games.GameByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "game not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, view, h.logger)
}

func pathID(raw string) (string, bool) {
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		return "", false
	}
	return id, true
}
