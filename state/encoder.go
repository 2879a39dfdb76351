// Package state compresses a raw observation into a bounded, hashable key.
package state

import (
	"math"

	"github.com/nstehr/vimy/vimy-scout/model"
)

// Footprints is the approximate screen area, in pixels, one instance of each
// structure covers. They are tuned for one map and resolution.
type Footprints struct {
	SupplyDepot int `yaml:"supply_depot"`
	Barracks    int `yaml:"barracks"`
	Turret      int `yaml:"turret"`
	Refinery    int `yaml:"refinery"`
}

// DefaultFootprints are tuned for a 64x64 ladder map at 84x84 screen resolution.
func DefaultFootprints() Footprints {
	return Footprints{SupplyDepot: 69, Barracks: 137, Turret: 52, Refinery: 97}
}

// Features is the decoded form of a key plus context the exclusion rules need
// but the key leaves out.
type Features struct {
	CommandCenters  int
	SupplyDepots    int
	Barracks        int
	EngineeringBays int
	Turrets         int
	Refineries      int
	SupplyCap       int
	ArmySupply      int
	Hostile         [Quadrants]bool

	// Not part of the key.
	WorkerSupply int
	SupplyFree   int
	IdleWorkers  int
}

// Key packs the features into the fixed-arity state key.
func (f Features) Key() Key {
	var k Key
	k.v[0] = int32(f.CommandCenters)
	k.v[1] = int32(f.SupplyDepots)
	k.v[2] = int32(f.Barracks)
	k.v[3] = int32(f.EngineeringBays)
	k.v[4] = int32(f.Turrets)
	k.v[5] = int32(f.Refineries)
	k.v[6] = int32(f.SupplyCap)
	k.v[7] = int32(f.ArmySupply)
	for i, h := range f.Hostile {
		if h {
			k.v[8+i] = 1
		}
	}
	return k
}

// HostileCount is the number of flagged quadrants.
func (f Features) HostileCount() int {
	n := 0
	for _, h := range f.Hostile {
		if h {
			n++
		}
	}
	return n
}

// Encoder turns observations into Features. It holds no per-episode state.
type Encoder struct {
	footprints Footprints
	grid       model.QuadrantGrid
}

// NewEncoder builds an encoder for a square minimap of mapSize cells.
func NewEncoder(fp Footprints, mapSize int) *Encoder {
	return &Encoder{
		footprints: fp,
		grid:       model.NewQuadrantGrid(mapSize, 4),
	}
}

// Encode discretizes obs. topLeft tells whether the agent started in the
// top-left corner; otherwise the quadrant flags are reversed so values learned
// on one side transfer to the other.
func (e *Encoder) Encode(obs *model.Observation, topLeft bool) Features {
	ut := obs.Screen.UnitType
	f := Features{
		CommandCenters:  presence(ut.Any(model.CommandCenter)),
		SupplyDepots:    instances(ut.Count(model.SupplyDepot), e.footprints.SupplyDepot),
		Barracks:        instances(ut.Count(model.Barracks), e.footprints.Barracks),
		EngineeringBays: presence(ut.Any(model.EngineeringBay)),
		Turrets:         instances(ut.Count(model.MissileTurret), e.footprints.Turret),
		Refineries:      instances(ut.Count(model.Refinery), e.footprints.Refinery),
		SupplyCap:       obs.Player.SupplyCap,
		ArmySupply:      obs.Player.ArmySupply,
		WorkerSupply:    obs.Player.WorkerSupply,
		SupplyFree:      obs.Player.SupplyFree(),
		IdleWorkers:     obs.Player.IdleWorkers,
	}

	mm := obs.Minimap.PlayerRelative
	for _, p := range mm.Find(model.PlayerEnemy) {
		if i, ok := e.grid.Index(p.X, p.Y); ok && i < Quadrants {
			f.Hostile[i] = true
		}
	}
	if !topLeft {
		for i, j := 0, Quadrants-1; i < j; i, j = i+1, j-1 {
			f.Hostile[i], f.Hostile[j] = f.Hostile[j], f.Hostile[i]
		}
	}
	return f
}

// TopLeft reports whether the agent's own minimap presence sits in the upper
// half of the map. An empty minimap counts as bottom-right.
func (e *Encoder) TopLeft(obs *model.Observation) bool {
	own := obs.Minimap.PlayerRelative.Find(model.PlayerSelf)
	_, y, ok := model.Centroid(own)
	if !ok {
		return false
	}
	return y <= float64(e.grid.MapSize()/2-1)
}

// MapSize is the minimap edge length the encoder partitions.
func (e *Encoder) MapSize() int { return e.grid.MapSize() }

func presence(b bool) int {
	if b {
		return 1
	}
	return 0
}

// instances converts an occupied pixel count into a structure count, rounding
// halves to even.
func instances(pixels, footprint int) int {
	if footprint <= 0 || pixels <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(pixels) / float64(footprint)))
}
