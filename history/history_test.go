package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func episode(i int) Episode {
	start := time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC)
	return Episode{
		ID:              fmt.Sprintf("ep-%02d", i),
		StartedAt:       start,
		EndedAt:         start.Add(90 * time.Second),
		Ticks:           100 + i,
		Decisions:       33,
		TotalReward:     float64(i) * 1.5,
		UnitKills:       i % 3,
		StructureKills:  i % 2,
		MilestoneReward: 5,
		ExploreReward:   0.25,
		TableRows:       10 * i,
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "db", "history.db")),
	}
}

func TestStores(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Init(ctx))
			defer s.Close()

			for i := 1; i <= 5; i++ {
				require.NoError(t, s.RecordEpisode(ctx, episode(i)))
			}

			all, err := s.Episodes(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, episode(1), all[0])
			assert.Equal(t, episode(5), all[4])
			assert.Equal(t, 90*time.Second, all[0].Duration())

			last, err := s.Episodes(ctx, 2)
			require.NoError(t, err)
			require.Len(t, last, 2)
			assert.Equal(t, "ep-04", last[0].ID)
			assert.Equal(t, "ep-05", last[1].ID)

			updated := episode(3)
			updated.TotalReward = 99
			require.NoError(t, s.RecordEpisode(ctx, updated))
			all, err = s.Episodes(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, 99.0, all[2].TotalReward)

			assert.Error(t, s.RecordEpisode(ctx, Episode{}))
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s := NewSQLiteStore(path)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.RecordEpisode(ctx, episode(7)))
	require.NoError(t, s.Close())

	s = NewSQLiteStore(path)
	require.NoError(t, s.Init(ctx))
	defer s.Close()
	got, err := s.Episodes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []Episode{episode(7)}, got)
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	_, err := s.Episodes(context.Background(), 0)
	assert.Error(t, err)
	assert.NoError(t, s.Close())
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("sqlite", "h.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}
