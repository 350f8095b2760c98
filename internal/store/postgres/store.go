// Package postgres implements the league store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/preston-bernstein/gridiron-service/internal/domain/games"
	"github.com/preston-bernstein/gridiron-service/internal/domain/players"
	"github.com/preston-bernstein/gridiron-service/internal/domain/seasons"
	"github.com/preston-bernstein/gridiron-service/internal/domain/standings"
	"github.com/preston-bernstein/gridiron-service/internal/domain/teams"
	"github.com/preston-bernstein/gridiron-service/internal/logging"
	"github.com/preston-bernstein/gridiron-service/internal/playoff"
	"github.com/preston-bernstein/gridiron-service/internal/store"
)

// Config holds connection settings.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store persists league state in PostgreSQL. Conditional writes are single
// UPDATE statements whose WHERE clause carries the guard; RowsAffected decides
// whether the caller won.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects, configures the pool and migrates the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("acquiring sql db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	s := New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	logging.Info(logger, "database connected",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return s, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Teams(ctx context.Context) ([]teams.Team, error) {
	var rows []teamModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	out := make([]teams.Team, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) UpsertTeams(ctx context.Context, list []teams.Team) error {
	if len(list) == 0 {
		return nil
	}
	rows := make([]teamModel, 0, len(list))
	for _, t := range list {
		rows = append(rows, toTeamModel(t))
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upserting teams: %w", err)
	}
	return nil
}

func (s *Store) Players(ctx context.Context, teamID string) ([]players.Player, error) {
	var rows []playerModel
	if err := s.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing players for %s: %w", teamID, err)
	}
	out := make([]players.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) UpsertPlayers(ctx context.Context, list []players.Player) error {
	if len(list) == 0 {
		return nil
	}
	rows := make([]playerModel, 0, len(list))
	for _, p := range list {
		rows = append(rows, toPlayerModel(p))
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&rows, 200).Error
	if err != nil {
		return fmt.Errorf("upserting players: %w", err)
	}
	return nil
}

func (s *Store) CurrentSeason(ctx context.Context) (seasons.Season, error) {
	var row seasonModel
	err := s.db.WithContext(ctx).Order("number DESC").First(&row).Error
	if err != nil {
		return seasons.Season{}, notFound(err, "current season")
	}
	return row.domain(), nil
}

func (s *Store) Season(ctx context.Context, id string) (seasons.Season, error) {
	var row seasonModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return seasons.Season{}, notFound(err, "season "+id)
	}
	return row.domain(), nil
}

// CreateSeason inserts a season; losing the unique season number is a conflict.
func (s *Store) CreateSeason(ctx context.Context, season seasons.Season) error {
	row := toSeasonModel(season)
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		return fmt.Errorf("creating season %d: %w", season.Number, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("season %d: %w", season.Number, store.ErrConflict)
	}
	return nil
}

func (s *Store) AdvanceSeason(ctx context.Context, id string, from, to seasons.Position) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&seasonModel{}).
		Where("id = ? AND status = ? AND current_week = ?", id, string(from.Status), from.Week).
		Updates(map[string]any{
			"status":       string(to.Status),
			"current_week": to.Week,
		})
	if result.Error != nil {
		return false, fmt.Errorf("advancing season %s: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) CompleteSeason(ctx context.Context, id string, from seasons.Position, championID string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&seasonModel{}).
		Where("id = ? AND status = ? AND current_week = ?", id, string(from.Status), from.Week).
		Updates(map[string]any{
			"status":           string(seasons.StatusOffseason),
			"champion_team_id": championID,
			"completed_at":     at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("completing season %s: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) SaveBracket(ctx context.Context, seasonID string, bracket playoff.Bracket) error {
	raw, err := json.Marshal(bracket)
	if err != nil {
		return fmt.Errorf("encoding bracket: %w", err)
	}
	result := s.db.WithContext(ctx).
		Model(&seasonModel{}).
		Where("id = ?", seasonID).
		Update("bracket", raw)
	if result.Error != nil {
		return fmt.Errorf("saving bracket for %s: %w", seasonID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("season %s: %w", seasonID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Bracket(ctx context.Context, seasonID string) (playoff.Bracket, error) {
	var row seasonModel
	if err := s.db.WithContext(ctx).Select("id", "bracket").Where("id = ?", seasonID).First(&row).Error; err != nil {
		return playoff.Bracket{}, notFound(err, "season "+seasonID)
	}
	if len(row.Bracket) == 0 {
		return playoff.Bracket{}, fmt.Errorf("bracket for season %s: %w", seasonID, store.ErrNotFound)
	}
	var b playoff.Bracket
	if err := json.Unmarshal(row.Bracket, &b); err != nil {
		return playoff.Bracket{}, fmt.Errorf("decoding bracket for %s: %w", seasonID, err)
	}
	return b, nil
}

// InsertGames inserts games, skipping IDs that already exist.
func (s *Store) InsertGames(ctx context.Context, list []games.Game) (int, error) {
	if len(list) == 0 {
		return 0, nil
	}
	rows := make([]gameModel, 0, len(list))
	for _, g := range list {
		m, err := toGameModel(g)
		if err != nil {
			return 0, err
		}
		rows = append(rows, m)
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, 100)
	if result.Error != nil {
		return 0, fmt.Errorf("inserting games: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (s *Store) Game(ctx context.Context, id string) (games.Game, error) {
	var row gameModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return games.Game{}, notFound(err, "game "+id)
	}
	return row.domain()
}

func (s *Store) WeekGames(ctx context.Context, seasonID string, week int) ([]games.Game, error) {
	return s.findGames(ctx, s.db.Where("season_id = ? AND week = ?", seasonID, week))
}

func (s *Store) SeasonGames(ctx context.Context, seasonID string) ([]games.Game, error) {
	return s.findGames(ctx, s.db.Where("season_id = ?", seasonID))
}

func (s *Store) RecentCompletedGames(ctx context.Context, limit int) ([]games.Game, error) {
	q := s.db.WithContext(ctx).
		Where("status = ? AND completed_at IS NOT NULL AND broadcast_started_at IS NOT NULL", string(games.StatusCompleted)).
		Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []gameModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing recent games: %w", err)
	}
	return toGames(rows)
}

func (s *Store) TransitionGame(ctx context.Context, id string, t games.Transition) (bool, error) {
	updates := map[string]any{"status": string(t.To)}
	if t.HomeScore != nil {
		updates["home_score"] = *t.HomeScore
	}
	if t.AwayScore != nil {
		updates["away_score"] = *t.AwayScore
	}
	if t.MVP != nil {
		updates["mvp"] = *t.MVP
	}
	if t.BoxScore != nil {
		raw, err := json.Marshal(t.BoxScore)
		if err != nil {
			return false, fmt.Errorf("encoding box score: %w", err)
		}
		updates["box_score"] = raw
	}
	if t.SimulationStartedAt != nil {
		updates["simulation_started_at"] = *t.SimulationStartedAt
	}
	if t.BroadcastStartedAt != nil {
		updates["broadcast_started_at"] = *t.BroadcastStartedAt
	}
	if t.CompletedAt != nil {
		updates["completed_at"] = *t.CompletedAt
	}

	q := s.db.WithContext(ctx).
		Model(&gameModel{}).
		Where("id = ? AND status = ?", id, string(t.From))
	if t.ClaimedBefore != nil {
		q = q.Where("(simulation_started_at IS NULL OR simulation_started_at < ?)", *t.ClaimedBefore)
	}
	result := q.Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("transitioning game %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Game(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// SetFeatured claims the weekly featured flag. The season row is locked so two
// claims for the same week serialize.
func (s *Store) SetFeatured(ctx context.Context, gameID string) (bool, error) {
	won := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g gameModel
		if err := tx.Where("id = ?", gameID).First(&g).Error; err != nil {
			return notFound(err, "game "+gameID)
		}
		var season seasonModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", g.SeasonID).First(&season).Error; err != nil {
			return notFound(err, "season "+g.SeasonID)
		}
		if err := tx.Where("id = ?", gameID).First(&g).Error; err != nil {
			return err
		}
		if g.Status != string(games.StatusScheduled) {
			return nil
		}
		if g.IsFeatured {
			won = true
			return nil
		}
		var others int64
		if err := tx.Model(&gameModel{}).
			Where("season_id = ? AND week = ? AND id <> ? AND is_featured", g.SeasonID, g.Week, g.ID).
			Count(&others).Error; err != nil {
			return err
		}
		if others > 0 {
			return nil
		}
		result := tx.Model(&gameModel{}).
			Where("id = ? AND status = ?", gameID, string(games.StatusScheduled)).
			Update("is_featured", true)
		if result.Error != nil {
			return result.Error
		}
		won = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("featuring game %s: %w", gameID, err)
	}
	return won, nil
}

func (s *Store) UpdateScheduledTimes(ctx context.Context, times map[string]time.Time) (int, error) {
	updated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, at := range times {
			result := tx.Model(&gameModel{}).
				Where("id = ? AND status = ?", id, string(games.StatusScheduled)).
				Update("scheduled_at", at)
			if result.Error != nil {
				return result.Error
			}
			updated += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("updating scheduled times: %w", err)
	}
	return updated, nil
}

func (s *Store) SaveGameEvents(ctx context.Context, gameID string, events []games.Event) error {
	rows := make([]eventModel, 0, len(events))
	for _, e := range events {
		rows = append(rows, toEventModel(gameID, e))
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", gameID).Delete(&eventModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, 200).Error
	})
	if err != nil {
		return fmt.Errorf("saving events for %s: %w", gameID, err)
	}
	return nil
}

func (s *Store) GameEvents(ctx context.Context, gameID string) ([]games.Event, error) {
	var rows []eventModel
	if err := s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("sequence").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing events for %s: %w", gameID, err)
	}
	out := make([]games.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) LastEventOffset(ctx context.Context, gameID string) (time.Duration, bool, error) {
	var result struct {
		Last *int64
	}
	err := s.db.WithContext(ctx).
		Model(&eventModel{}).
		Where("game_id = ?", gameID).
		Select("MAX(offset_ms) AS last").
		Scan(&result).Error
	if err != nil {
		return 0, false, fmt.Errorf("reading last event for %s: %w", gameID, err)
	}
	if result.Last == nil {
		return 0, false, nil
	}
	return time.Duration(*result.Last) * time.Millisecond, true, nil
}

func (s *Store) Standings(ctx context.Context, seasonID string) ([]standings.Standing, error) {
	var rows []standingModel
	if err := s.db.WithContext(ctx).Where("season_id = ?", seasonID).Order("team_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing standings for %s: %w", seasonID, err)
	}
	out := make([]standings.Standing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (s *Store) SaveStandings(ctx context.Context, list []standings.Standing) error {
	if len(list) == 0 {
		return nil
	}
	rows := make([]standingModel, 0, len(list))
	for _, row := range list {
		rows = append(rows, toStandingModel(row))
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("saving standings: %w", err)
	}
	return nil
}

func (s *Store) findGames(ctx context.Context, scope *gorm.DB) ([]games.Game, error) {
	var rows []gameModel
	err := scope.WithContext(ctx).
		Order("scheduled_at ASC NULLS LAST").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return toGames(rows)
}

func toGames(rows []gameModel) ([]games.Game, error) {
	out := make([]games.Game, 0, len(rows))
	for _, r := range rows {
		g, err := r.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
