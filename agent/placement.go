package agent

import (
	"github.com/nstehr/vimy/vimy-scout/catalog"
	"github.com/nstehr/vimy/vimy-scout/ipc"
	"github.com/nstehr/vimy/vimy-scout/model"
	"github.com/nstehr/vimy/vimy-scout/state"
)

// placement is where the nth instance of a structure goes, relative to the
// command center, for a top-left start. Bonus is the milestone reward for
// placing it.
type placement struct {
	DX, DY int
	Bonus  float64
}

var placements = map[catalog.Kind][]placement{
	catalog.BuildSupplyDepot: {
		{DX: -35, DY: 0},
		{DX: -5, DY: -32},
		{DX: 13, DY: 0, Bonus: 5},
	},
	catalog.BuildBarracks: {
		{DX: 32, DY: -20, Bonus: 2},
		{DX: 22, DY: -20, Bonus: 2},
		{DX: 28, DY: -10, Bonus: 2},
		{DX: 10, DY: 17, Bonus: 4},
	},
	catalog.BuildEngineeringBay: {
		{DX: -8, DY: 28, Bonus: 5},
	},
	catalog.BuildTurret: {
		{DX: 29, DY: 24},
		{DX: 24, DY: 29, Bonus: 5},
	},
}

var buildFuncs = map[catalog.Kind]string{
	catalog.BuildSupplyDepot:    ipc.FuncBuildSupplyDepot,
	catalog.BuildBarracks:       ipc.FuncBuildBarracks,
	catalog.BuildEngineeringBay: ipc.FuncBuildEngineeringBay,
	catalog.BuildTurret:         ipc.FuncBuildMissileTurret,
	catalog.BuildRefinery:       ipc.FuncBuildRefinery,
}

const (
	// geyserPixels approximates one geyser's screen area; the first refinery
	// goes on the first geyser found in row order.
	geyserPixels    = 97
	refineryBonus   = 5 // second refinery
	techLabBonus    = 5
	reaperBonus     = 1
	maxRefineries   = 2
	gasEveryNthTrip = 4
)

// built returns how many instances of k's structure the features count.
func built(f state.Features, k catalog.Kind) int {
	switch k {
	case catalog.BuildSupplyDepot:
		return f.SupplyDepots
	case catalog.BuildBarracks:
		return f.Barracks
	case catalog.BuildEngineeringBay:
		return f.EngineeringBays
	case catalog.BuildTurret:
		return f.Turrets
	case catalog.BuildRefinery:
		return f.Refineries
	}
	return 0
}

// offset applies (dx, dy) to p, negated for a bottom-right start.
func offset(p model.Point, dx, dy int, topLeft bool) model.Point {
	if !topLeft {
		return model.Point{X: p.X - dx, Y: p.Y - dy}
	}
	return model.Point{X: p.X + dx, Y: p.Y + dy}
}

// mirror maps a minimap cell chosen for a top-left start onto the opposite
// corner's frame.
func mirror(p model.Point, size int, topLeft bool) model.Point {
	if !topLeft {
		return model.Point{X: size - 1 - p.X, Y: size - 1 - p.Y}
	}
	return p
}
