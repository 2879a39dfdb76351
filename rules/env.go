package rules

import "github.com/nstehr/vimy/vimy-scout/state"

// Env is what rule conditions see: the discretized counts plus the few
// per-episode flags that gate one-shot actions.
type Env struct {
	CommandCenters   int
	SupplyDepots     int
	Barracks         int
	EngineeringBays  int
	Turrets          int
	Refineries       int
	SupplyCap        int
	ArmySupply       int
	WorkerSupply     int
	SupplyFree       int
	IdleWorkers      int
	HostileQuadrants int
	TechLabBuilt     bool
}

// NewEnv builds a rule environment from encoded features.
func NewEnv(f state.Features) Env {
	return Env{
		CommandCenters:   f.CommandCenters,
		SupplyDepots:     f.SupplyDepots,
		Barracks:         f.Barracks,
		EngineeringBays:  f.EngineeringBays,
		Turrets:          f.Turrets,
		Refineries:       f.Refineries,
		SupplyCap:        f.SupplyCap,
		ArmySupply:       f.ArmySupply,
		WorkerSupply:     f.WorkerSupply,
		SupplyFree:       f.SupplyFree,
		IdleWorkers:      f.IdleWorkers,
		HostileQuadrants: f.HostileCount(),
	}
}

func (e Env) HasArmy() bool { return e.ArmySupply > 0 }

func (e Env) HasWorkers() bool { return e.WorkerSupply > 0 }
