package reward

import (
	"testing"

	"github.com/nstehr/vimy/vimy-scout/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layer(size, v int, pts ...model.Point) model.Layer {
	l := model.Layer{Width: size, Height: size, Cells: make([]int, size*size)}
	for _, p := range pts {
		l.Cells[p.Y*size+p.X] = v
	}
	return l
}

func TestUnitKillBonusIsEdgeTriggered(t *testing.T) {
	s := NewShaper(DefaultConfig())
	for i, killed := range []int{0, 0, 1, 1, 2} {
		s.ObserveScore(i+1, model.Score{KilledUnits: killed})
	}

	events := s.Events()
	require.Len(t, events, 2)
	assert.Equal(t, 3, events[0].Tick)
	assert.Equal(t, 5, events[1].Tick)
	assert.Equal(t, EventUnitKill, events[0].Kind)
	assert.InDelta(t, 2.0, s.Total(), 1e-9)
}

func TestStructureKillBonus(t *testing.T) {
	s := NewShaper(DefaultConfig())
	for tick := 1; tick <= 10; tick++ {
		killed := 0
		if tick >= 6 {
			killed = 1
		}
		s.ObserveScore(tick, model.Score{KilledStructures: killed})
	}
	assert.InDelta(t, 15.0, s.Total(), 1e-9)
	tl := s.Tally()
	assert.Equal(t, 1, tl.Count[EventStructureKill])
	assert.Zero(t, tl.Count[EventUnitKill])
}

func TestExplorationBonusScalesWithDistance(t *testing.T) {
	s := NewShaper(DefaultConfig())
	obs := &model.Observation{
		Tick: 4,
		Screen: model.Screen{UnitType: layer(84, model.CommandCenter,
			model.Point{X: 10, Y: 10}, model.Point{X: 12, Y: 10})},
		Minimap: model.Minimap{PlayerRelative: layer(64, model.PlayerEnemy,
			model.Point{X: 14, Y: 40}, model.Point{X: 8, Y: 40})},
	}
	s.ObserveSight(obs)

	// centroids (11,10) and (11,40): distance 30, two hostile cells.
	assert.InDelta(t, 2*0.001*30, s.Total(), 1e-12)
}

func TestExplorationBonusNeedsBothCentroids(t *testing.T) {
	s := NewShaper(DefaultConfig())
	noBase := &model.Observation{
		Minimap: model.Minimap{PlayerRelative: layer(64, model.PlayerEnemy, model.Point{X: 50, Y: 50})},
	}
	s.ObserveSight(noBase)
	s.ObserveSight(&model.Observation{})
	assert.Zero(t, s.Total())
	assert.Empty(t, s.Events())
}

func TestVisibilityBonus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Visibility = 0.5
	s := NewShaper(cfg)

	pts := func(n int) []model.Point {
		out := make([]model.Point, n)
		for i := range out {
			out[i] = model.Point{X: i % 64, Y: i / 64}
		}
		return out
	}
	see := func(n int) {
		s.ObserveSight(&model.Observation{Minimap: model.Minimap{Visibility: layer(64, model.Visible, pts(n)...)}})
	}

	see(100) // baseline, never pays
	see(110) // +10
	see(130) // +20
	see(120)
	assert.InDelta(t, 0.5, s.Total(), 1e-12)
	assert.Equal(t, 1, s.Tally().Count[EventVisibility])
}

func TestRewardRoutingDefaultsToTerminal(t *testing.T) {
	s := NewShaper(DefaultConfig())
	s.Milestone(2, 5, "depot")
	assert.Zero(t, s.TakeStep())
	s.Milestone(5, 2, "barracks")
	assert.Zero(t, s.TakeStep())
	assert.InDelta(t, 7.0, s.Terminal(), 1e-12)
}

func TestRewardRoutingWithStepRewards(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepRewards = true
	s := NewShaper(cfg)

	s.Milestone(2, 5, "depot")
	assert.InDelta(t, 5.0, s.TakeStep(), 1e-12)
	assert.Zero(t, s.TakeStep())
	s.Milestone(5, 2, "barracks")
	assert.InDelta(t, 2.0, s.Terminal(), 1e-12)
	assert.InDelta(t, 7.0, s.Total(), 1e-12)
}

func TestResetClearsLatches(t *testing.T) {
	s := NewShaper(DefaultConfig())
	s.ObserveScore(1, model.Score{KilledUnits: 3})
	s.Milestone(1, 0, "ignored")
	require.Len(t, s.Events(), 1)

	s.Reset()
	assert.Zero(t, s.Total())
	assert.Empty(t, s.Events())
	s.ObserveScore(1, model.Score{KilledUnits: 1})
	assert.InDelta(t, 1.0, s.Total(), 1e-12)
}

func TestDistanceRoundsSquaredDeltas(t *testing.T) {
	// dx = 0.5 -> 0.25 rounds to 0; dy = 3 -> 9.
	got := distance([]model.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}, []model.Point{{X: 0, Y: 3}})
	assert.InDelta(t, 3.0, got, 1e-12)
}
