package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS episodes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			decisions INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			unit_kills INTEGER NOT NULL,
			structure_kills INTEGER NOT NULL,
			milestone_reward REAL NOT NULL,
			explore_reward REAL NOT NULL,
			table_rows INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) RecordEpisode(ctx context.Context, e Episode) error {
	if e.ID == "" {
		return errors.New("episode id is required")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (id, started_at, ended_at, ticks, decisions, total_reward,
			unit_kills, structure_kills, milestone_reward, explore_reward, table_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			ticks = excluded.ticks,
			decisions = excluded.decisions,
			total_reward = excluded.total_reward,
			unit_kills = excluded.unit_kills,
			structure_kills = excluded.structure_kills,
			milestone_reward = excluded.milestone_reward,
			explore_reward = excluded.explore_reward,
			table_rows = excluded.table_rows
	`, e.ID, e.StartedAt.UnixNano(), e.EndedAt.UnixNano(), e.Ticks, e.Decisions, e.TotalReward,
		e.UnitKills, e.StructureKills, e.MilestoneReward, e.ExploreReward, e.TableRows)
	if err != nil {
		return fmt.Errorf("record episode %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Episodes(ctx context.Context, limit int) ([]Episode, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, ticks, decisions, total_reward,
			unit_kills, structure_kills, milestone_reward, explore_reward, table_rows
		FROM (SELECT * FROM episodes ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		var (
			e              Episode
			started, ended int64
		)
		if err := rows.Scan(&e.ID, &started, &ended, &e.Ticks, &e.Decisions, &e.TotalReward,
			&e.UnitKills, &e.StructureKills, &e.MilestoneReward, &e.ExploreReward, &e.TableRows); err != nil {
			return nil, err
		}
		e.StartedAt = time.Unix(0, started).UTC()
		e.EndedAt = time.Unix(0, ended).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}
