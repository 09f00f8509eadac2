package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"pgchart/internal/metrics"
	"pgchart/internal/model"
	"pgchart/internal/series"
)

// SQLiteStore persists ticks to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	loc *time.Location
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, loc *time.Location) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets chart queries read while the sync job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	s := &SQLiteStore{db: db, loc: loc}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			ts    INTEGER PRIMARY KEY,
			price REAL NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) SaveTicks(ctx context.Context, ticks []model.PriceSample) (int, error) {
	if len(ticks) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO ticks (ts, price) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range ticks {
		res, err := stmt.ExecContext(ctx, t.Timestamp, t.Price)
		if err != nil {
			return 0, fmt.Errorf("insert tick %d: %w", t.Timestamp, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	metrics.TicksStored.Add(float64(inserted))
	return inserted, nil
}

func (s *SQLiteStore) FetchTicks(ctx context.Context, start, end int64) ([]model.PriceSample, error) {
	if start > end {
		return nil, ErrTimeRange
	}
	return s.queryTicks(ctx, `SELECT ts, price FROM ticks WHERE ts >= ? AND ts <= ? ORDER BY ts`, start, end)
}

func (s *SQLiteStore) FetchDailyCandles(ctx context.Context) ([]model.DayCandle, error) {
	ticks, err := s.queryTicks(ctx, `SELECT ts, price FROM ticks ORDER BY ts`)
	if err != nil {
		return nil, err
	}
	return series.DailyCandles(ticks, s.loc), nil
}

func (s *SQLiteStore) queryTicks(ctx context.Context, query string, args ...any) ([]model.PriceSample, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select ticks: %w", err)
	}
	defer rows.Close()

	ticks := make([]model.PriceSample, 0)
	for rows.Next() {
		var t model.PriceSample
		if err := rows.Scan(&t.Timestamp, &t.Price); err != nil {
			return nil, fmt.Errorf("scan rows: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ticks: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Latest(ctx context.Context) (model.PriceSample, bool, error) {
	var t model.PriceSample
	err := s.db.QueryRowContext(ctx, `SELECT ts, price FROM ticks ORDER BY ts DESC LIMIT 1`).Scan(&t.Timestamp, &t.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PriceSample{}, false, nil
	}
	if err != nil {
		return model.PriceSample{}, false, fmt.Errorf("latest tick: %w", err)
	}
	return t, true, nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
