// Package broadcast projects start times for games that have not been played.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
)

const (
	// MinSamples is the number of completed broadcasts needed before the
	// estimate stops using the default duration.
	MinSamples = 3
	// SampleWindow bounds how many recent completions feed the estimate.
	SampleWindow = 10
)

// Config holds the pacing used to lay out games.
type Config struct {
	DefaultDuration time.Duration
	MaxDuration     time.Duration
	Intermission    time.Duration
	WeekBreak       time.Duration
}

// Store is the persistence the projector reads and writes.
type Store interface {
	SeasonGames(ctx context.Context, seasonID string) ([]games.Game, error)
	RecentCompletedGames(ctx context.Context, limit int) ([]games.Game, error)
	UpdateScheduledTimes(ctx context.Context, times map[string]time.Time) (int, error)
}

// Projector recomputes scheduledAt for a season's scheduled games.
type Projector struct {
	store  Store
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

// NewProjector builds a projector. A nil clock uses time.Now.
func NewProjector(store Store, cfg Config, now func() time.Time, logger *slog.Logger) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{store: store, cfg: cfg, now: now, logger: logger}
}

// Project recomputes and writes start times, returning how many games were updated.
func (p *Projector) Project(ctx context.Context, seasonID string) (int, error) {
	season, err := p.store.SeasonGames(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("loading season games: %w", err)
	}
	recent, err := p.store.RecentCompletedGames(ctx, SampleWindow)
	if err != nil {
		return 0, fmt.Errorf("loading recent games: %w", err)
	}

	estimate := EstimateDuration(recent, p.cfg)
	times := Plan(season, estimate, p.now(), p.cfg)
	if len(times) == 0 {
		return 0, nil
	}
	updated, err := p.store.UpdateScheduledTimes(ctx, times)
	if err != nil {
		return 0, fmt.Errorf("writing scheduled times: %w", err)
	}
	if logger := logging.FromContext(ctx, p.logger); logger != nil {
		logger.Debug("projected broadcast times",
			logging.FieldSeasonID, seasonID,
			logging.FieldCount, updated,
			"estimate_ms", estimate.Milliseconds(),
		)
	}
	return updated, nil
}

// EstimateDuration averages completed broadcast durations, ignoring samples
// that are non-positive or above the ceiling. Fewer than MinSamples usable
// samples yields the default.
func EstimateDuration(completed []games.Game, cfg Config) time.Duration {
	var total time.Duration
	n := 0
	for _, g := range completed {
		d, ok := g.BroadcastDuration()
		if !ok || d <= 0 || (cfg.MaxDuration > 0 && d > cfg.MaxDuration) {
			continue
		}
		total += d
		n++
	}
	if n < MinSamples {
		return cfg.DefaultDuration
	}
	return total / time.Duration(n)
}

// Plan lays out every scheduled game after the anchor. Games are grouped by
// week in ascending order; within a week the featured game goes first and the
// rest follow by ID. A week break precedes each week other than the anchor's.
func Plan(season []games.Game, estimate time.Duration, now time.Time, cfg Config) map[string]time.Time {
	anchor, anchorWeek := Anchor(season, estimate, now, cfg)

	byWeek := make(map[int][]games.Game)
	for _, g := range season {
		if g.Status == games.StatusScheduled {
			byWeek[g.Week] = append(byWeek[g.Week], g)
		}
	}
	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	slot := estimate + cfg.Intermission
	cursor := anchor
	out := make(map[string]time.Time)
	for _, week := range weeks {
		group := byWeek[week]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].IsFeatured != group[j].IsFeatured {
				return group[i].IsFeatured
			}
			return group[i].ID < group[j].ID
		})
		if week != anchorWeek {
			cursor = cursor.Add(cfg.WeekBreak)
		}
		for i, g := range group {
			out[g.ID] = cursor.Add(time.Duration(i) * slot)
		}
		cursor = cursor.Add(time.Duration(len(group)) * slot)
		// Only the first group can share the anchor's week.
		anchorWeek = -1
	}
	return out
}

// Anchor returns the time the next game can start and the week it belongs to.
// A live broadcast anchors at its start plus the estimate; otherwise the latest
// completion plus the intermission; otherwise now. The anchor never falls
// before now.
func Anchor(season []games.Game, estimate time.Duration, now time.Time, cfg Config) (time.Time, int) {
	var anchor time.Time
	week := 0
	var lastDone *games.Game
	for i := range season {
		g := season[i]
		if g.Status == games.StatusBroadcasting && g.BroadcastStartedAt != nil {
			anchor = g.BroadcastStartedAt.Add(estimate)
			week = g.Week
			break
		}
		if g.Status == games.StatusCompleted && g.CompletedAt != nil {
			if lastDone == nil || g.CompletedAt.After(*lastDone.CompletedAt) {
				lastDone = &season[i]
			}
		}
	}
	if anchor.IsZero() && lastDone != nil {
		anchor = lastDone.CompletedAt.Add(cfg.Intermission)
		week = lastDone.Week
	}
	if anchor.IsZero() || anchor.Before(now) {
		anchor = now
	}
	return anchor, week
}
