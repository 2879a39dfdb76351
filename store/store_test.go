package store

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/nstehr/vimy/vimy-scout/learn"
	"github.com/nstehr/vimy/vimy-scout/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(actions int) *learn.Table {
	return learn.NewTable(actions, learn.DefaultParams(), rand.New(rand.NewSource(1)))
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	s := NewFileStore(path)

	src := newTable(5)
	k1 := state.Features{CommandCenters: 1, SupplyCap: 15}.Key()
	k2 := state.Features{CommandCenters: 1, SupplyCap: 23, ArmySupply: 2}.Key()
	src.Materialize(k1)[3] = math.Pi
	src.Materialize(k2)[0] = -1e-300
	src.Materialize(state.Terminal)
	require.NoError(t, s.Save(src))

	h, rows, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, Header{Version: formatVersion, Actions: 5, Rows: 3}, h)
	assert.Len(t, rows, 3)

	dst := newTable(5)
	require.NoError(t, s.Load(dst))
	assert.Equal(t, 3, dst.Len())
	assert.Equal(t, math.Pi, dst.Value(k1, 3))
	assert.Equal(t, -1e-300, dst.Value(k2, 0))
	assert.True(t, dst.Has(state.Terminal))
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.gob.zst"))
	tbl := newTable(3)
	require.NoError(t, s.Load(tbl))
	assert.Zero(t, tbl.Len())
}

func TestFileStoreRejectsWidthMismatch(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), DefaultFile))
	src := newTable(4)
	src.Materialize(state.Features{}.Key())
	require.NoError(t, s.Save(src))

	assert.Error(t, s.Load(newTable(5)))
}

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s := NewFileStore(path)

	tbl := newTable(2)
	tbl.Materialize(state.Features{SupplyCap: 1}.Key())
	require.NoError(t, s.Save(tbl))
	tbl.Materialize(state.Features{SupplyCap: 2}.Key())
	require.NoError(t, s.Save(tbl))

	h, _, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Rows)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files left behind")
}

func TestReadTableCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))
	_, _, err := ReadTable(path)
	assert.Error(t, err)
	assert.Error(t, NewFileStore(path).Load(newTable(2)))
}

func TestNewFileStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultFile, NewFileStore("").Path)
}
