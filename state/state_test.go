package state

import (
	"testing"

	"github.com/nstehr/vimy/vimy-scout/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layer returns a size x size layer with the given points set to v.
func layer(size, v int, pts ...model.Point) model.Layer {
	l := model.Layer{Width: size, Height: size, Cells: make([]int, size*size)}
	for _, p := range pts {
		l.Cells[p.Y*size+p.X] = v
	}
	return l
}

// fill sets n cells of l to v, scanning row-major from the first free cell.
func fill(l model.Layer, v, n int) model.Layer {
	for i := range l.Cells {
		if n == 0 {
			break
		}
		if l.Cells[i] == 0 {
			l.Cells[i] = v
			n--
		}
	}
	return l
}

func TestEncodeEmptyObservation(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)
	f := enc.Encode(&model.Observation{}, true)

	assert.Equal(t, Features{}, f)
	k := f.Key()
	assert.Len(t, k.Components(), Arity)
	assert.False(t, k.IsTerminal())
}

func TestEncodeStructureCounts(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)
	screen := layer(84, 0)
	screen = fill(screen, model.CommandCenter, 300)
	screen = fill(screen, model.SupplyDepot, 69*2+20) // 2.29 -> 2
	screen = fill(screen, model.Barracks, 137/2+1)    // 0.50.. -> 1
	screen = fill(screen, model.EngineeringBay, 5)
	screen = fill(screen, model.MissileTurret, 26) // exactly 0.5 -> 0 (half to even)
	screen = fill(screen, model.Refinery, 97*3/2)  // 145/97 = 1.49 -> 1

	obs := &model.Observation{
		Screen: model.Screen{UnitType: screen},
		Player: model.Player{SupplyUsed: 10, SupplyCap: 23, ArmySupply: 3, WorkerSupply: 7},
	}
	f := enc.Encode(obs, true)

	assert.Equal(t, 1, f.CommandCenters)
	assert.Equal(t, 2, f.SupplyDepots)
	assert.Equal(t, 1, f.Barracks)
	assert.Equal(t, 1, f.EngineeringBays)
	assert.Equal(t, 0, f.Turrets)
	assert.Equal(t, 1, f.Refineries)
	assert.Equal(t, 23, f.SupplyCap)
	assert.Equal(t, 3, f.ArmySupply)
	assert.Equal(t, 7, f.WorkerSupply)
	assert.Equal(t, 13, f.SupplyFree)
}

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)
	obs := &model.Observation{
		Minimap: model.Minimap{PlayerRelative: layer(64, model.PlayerEnemy, model.Point{X: 40, Y: 5})},
		Player:  model.Player{SupplyCap: 15},
	}
	a := enc.Encode(obs, true).Key()
	b := enc.Encode(obs, true).Key()
	assert.Equal(t, a, b)
	assert.Equal(t, a.String(), b.String())

	seen := map[Key]int{a: 1}
	seen[b]++
	assert.Equal(t, 2, seen[a])
}

func TestEncodeHostileQuadrants(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)
	mm := layer(64, model.PlayerEnemy,
		model.Point{X: 0, Y: 0},   // cell 0
		model.Point{X: 15, Y: 15}, // cell 0 again
		model.Point{X: 40, Y: 20}, // row 1, col 2 -> 6
		model.Point{X: 63, Y: 63}, // cell 15
	)
	f := enc.Encode(&model.Observation{Minimap: model.Minimap{PlayerRelative: mm}}, true)

	var want [Quadrants]bool
	want[0], want[6], want[15] = true, true, true
	assert.Equal(t, want, f.Hostile)
	assert.Equal(t, 3, f.HostileCount())
}

func TestEncodeMirrorsForBottomRightStart(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)
	mm := layer(64, model.PlayerEnemy, model.Point{X: 2, Y: 2})
	obs := &model.Observation{Minimap: model.Minimap{PlayerRelative: mm}}

	topLeft := enc.Encode(obs, true)
	mirrored := enc.Encode(obs, false)

	require.True(t, topLeft.Hostile[0])
	for i := 0; i < Quadrants; i++ {
		assert.Equal(t, topLeft.Hostile[i], mirrored.Hostile[Quadrants-1-i], "flag %d", i)
	}
	assert.True(t, mirrored.Hostile[15])
	assert.False(t, mirrored.Hostile[0])
}

func TestTopLeft(t *testing.T) {
	enc := NewEncoder(DefaultFootprints(), 64)

	top := &model.Observation{Minimap: model.Minimap{
		PlayerRelative: layer(64, model.PlayerSelf, model.Point{X: 10, Y: 20}, model.Point{X: 12, Y: 31}),
	}}
	assert.True(t, enc.TopLeft(top))

	bottom := &model.Observation{Minimap: model.Minimap{
		PlayerRelative: layer(64, model.PlayerSelf, model.Point{X: 50, Y: 44}),
	}}
	assert.False(t, enc.TopLeft(bottom))
	assert.False(t, enc.TopLeft(&model.Observation{}))
}

func TestKeyTextRoundTrip(t *testing.T) {
	f := Features{CommandCenters: 1, SupplyDepots: 2, SupplyCap: 200, ArmySupply: 14}
	f.Hostile[3] = true
	k := f.Key()

	parsed, err := ParseKey(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)

	term, err := ParseKey(Terminal.String())
	require.NoError(t, err)
	assert.True(t, term.IsTerminal())
	assert.NotEqual(t, Key{}, Terminal)

	_, err = ParseKey("1,2,3")
	assert.Error(t, err)
	_, err = ParseKey("1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,x")
	assert.Error(t, err)
}
