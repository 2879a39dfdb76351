// Package history keeps a per-episode record of training runs.
package history

import (
	"context"
	"fmt"
	"time"
)

// Episode summarises one finished training episode.
type Episode struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	Ticks           int       `json:"ticks"`
	Decisions       int       `json:"decisions"`
	TotalReward     float64   `json:"totalReward"`
	UnitKills       int       `json:"unitKills"`
	StructureKills  int       `json:"structureKills"`
	MilestoneReward float64   `json:"milestoneReward"`
	ExploreReward   float64   `json:"exploreReward"`
	TableRows       int       `json:"tableRows"`
}

func (e Episode) Duration() time.Duration { return e.EndedAt.Sub(e.StartedAt) }

// Store records episodes. Episodes returns them oldest first; limit <= 0
// returns all of them.
type Store interface {
	Init(ctx context.Context) error
	RecordEpisode(ctx context.Context, e Episode) error
	Episodes(ctx context.Context, limit int) ([]Episode, error)
	Close() error
}

func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", kind)
	}
}
