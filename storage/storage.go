package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"flipgrid-server/game"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS round_history (
	id              UUID PRIMARY KEY,
	room_id         UUID NOT NULL,
	grid_rows       INT NOT NULL,
	grid_cols       INT NOT NULL,
	suggested_flips INT NOT NULL,
	total_flips     INT NOT NULL,
	score           INT NOT NULL,
	duration_sec    INT NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_round_history_room ON round_history(room_id);
CREATE TABLE IF NOT EXISTS round_players (
	round_id     UUID NOT NULL REFERENCES round_history(id),
	user_id      TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL,
	flips        INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_players_round_id ON round_players(round_id);
CREATE INDEX IF NOT EXISTS idx_round_players_user_id ON round_players(user_id);
CREATE TABLE IF NOT EXISTS player_stats (
	user_id      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	rating       INT NOT NULL DEFAULT 0,
	solves       INT NOT NULL DEFAULT 0,
	best_score   INT NOT NULL DEFAULT 0,
	total_flips  INT NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_stats_rating ON player_stats(rating DESC);
`

// RoundRecord is one solved round as seen in a player's history.
type RoundRecord struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	GridRows       int       `json:"grid_rows"`
	GridCols       int       `json:"grid_cols"`
	SuggestedFlips int       `json:"suggested_flips"`
	TotalFlips     int       `json:"total_flips"`
	Score          int       `json:"score"`
	DurationSec    int       `json:"duration_sec"`
	FinishedAt     time.Time `json:"finished_at"`
	YourFlips      int       `json:"your_flips"`
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Rating        int    `json:"rating"`
	Solves        int    `json:"solves"`
	BestScore     int    `json:"best_score"`
	IsCurrentUser bool   `json:"is_current_user,omitempty"`
}

// Store persists and retrieves round history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the schema exists.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// InsertRoundResult records a solved round, its per-player flip tallies, and
// folds the score into each authenticated player's stats. Anonymous seats
// (empty user ID) appear in round_players but not in player_stats.
func (s *Store) InsertRoundResult(ctx context.Context, res game.RoundResult) error {
	if s == nil || s.pool == nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	roundID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO round_history (id, room_id, grid_rows, grid_cols, suggested_flips, total_flips, score, duration_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		roundID, res.RoomID, res.Rows, res.Cols, res.SuggestedFlipCount, res.PlayerFlipCount, res.Score, res.DurationSec)
	if err != nil {
		return err
	}

	for _, p := range res.Players {
		_, err = tx.Exec(ctx, `
			INSERT INTO round_players (round_id, user_id, display_name, flips)
			VALUES ($1, $2, $3, $4)`,
			roundID, p.UserID, p.Name, p.Flips)
		if err != nil {
			return err
		}
		if p.UserID == "" {
			continue
		}
		if err := updateStats(ctx, tx, p, res.Score); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// updateStats upserts one player's stats row inside the round transaction.
func updateStats(ctx context.Context, tx pgx.Tx, p game.RoundPlayer, score int) error {
	var rating, solves, bestScore, totalFlips int
	err := tx.QueryRow(ctx,
		`SELECT rating, solves, best_score, total_flips FROM player_stats WHERE user_id = $1`,
		p.UserID).Scan(&rating, &solves, &bestScore, &totalFlips)
	switch err {
	case nil:
	case pgx.ErrNoRows:
		rating, solves, bestScore, totalFlips = 0, 0, score, 0
	default:
		return err
	}

	newRating := computeRatingUpdate(rating, score, solves)
	if score > bestScore || solves == 0 {
		bestScore = score
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO player_stats (user_id, display_name, rating, solves, best_score, total_flips, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			rating = EXCLUDED.rating,
			solves = EXCLUDED.solves,
			best_score = EXCLUDED.best_score,
			total_flips = EXCLUDED.total_flips,
			updated_at = now()`,
		p.UserID, p.Name, newRating, solves+1, bestScore, totalFlips+p.Flips)
	return err
}

// ListByUserID returns the rounds the user took part in, newest first.
func (s *Store) ListByUserID(ctx context.Context, userID string) ([]RoundRecord, error) {
	if s == nil || s.pool == nil {
		return []RoundRecord{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT h.id, h.room_id, h.grid_rows, h.grid_cols, h.suggested_flips,
		       h.total_flips, h.score, h.duration_sec, h.finished_at, p.flips
		FROM round_history h
		JOIN round_players p ON p.round_id = h.id
		WHERE p.user_id = $1
		ORDER BY h.finished_at DESC
		LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []RoundRecord{}
	for rows.Next() {
		var rec RoundRecord
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.GridRows, &rec.GridCols,
			&rec.SuggestedFlips, &rec.TotalFlips, &rec.Score, &rec.DurationSec,
			&rec.FinishedAt, &rec.YourFlips); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// ListLeaderboard returns leaderboard entries ordered by rating.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return []LeaderboardEntry{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, display_name, rating, solves, best_score
		FROM player_stats
		ORDER BY rating DESC, solves DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Rating, &e.Solves, &e.BestScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetLeaderboardEntryByUserID returns one user's leaderboard row, or nil if
// they have no recorded solves.
func (s *Store) GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	var e LeaderboardEntry
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, display_name, rating, solves, best_score
		FROM player_stats WHERE user_id = $1`, userID).
		Scan(&e.UserID, &e.DisplayName, &e.Rating, &e.Solves, &e.BestScore)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
