package model

// Observation is one tick of sensor data from the environment. Layers are
// row-major grids; Screen is the local camera view, Minimap covers the whole map.
type Observation struct {
	Tick             int      `json:"tick"`
	First            bool     `json:"first"`
	Last             bool     `json:"last"`
	Screen           Screen   `json:"screen"`
	Minimap          Minimap  `json:"minimap"`
	Player           Player   `json:"player"`
	Score            Score    `json:"score"`
	AvailableActions []string `json:"availableActions"`
	SingleSelect     []int    `json:"singleSelect,omitempty"` // unit type ids of the selected unit
	MultiSelect      []int    `json:"multiSelect,omitempty"`  // unit type ids of a multi-unit selection
}

type Screen struct {
	UnitType       Layer `json:"unitType"`
	PlayerRelative Layer `json:"playerRelative"`
}

type Minimap struct {
	PlayerRelative Layer `json:"playerRelative"`
	Visibility     Layer `json:"visibility"`
}

// Player carries the scalar supply counters.
type Player struct {
	Minerals     int `json:"minerals"`
	Vespene      int `json:"vespene"`
	SupplyUsed   int `json:"supplyUsed"`
	SupplyCap    int `json:"supplyCap"`
	ArmySupply   int `json:"armySupply"`
	WorkerSupply int `json:"workerSupply"`
	IdleWorkers  int `json:"idleWorkers"`
}

// SupplyFree is the remaining headroom below the supply cap.
func (p Player) SupplyFree() int { return p.SupplyCap - p.SupplyUsed }

// Score holds cumulative counters; they only grow within an episode.
type Score struct {
	KilledUnits      int `json:"killedUnits"`
	KilledStructures int `json:"killedStructures"`
}

// Available reports whether fn is legal this tick.
func (o *Observation) Available(fn string) bool {
	for _, a := range o.AvailableActions {
		if a == fn {
			return true
		}
	}
	return false
}

// Selected reports whether the current selection leads with the given unit type.
func (o *Observation) Selected(unitType int) bool {
	if len(o.SingleSelect) > 0 && o.SingleSelect[0] == unitType {
		return true
	}
	return len(o.MultiSelect) > 0 && o.MultiSelect[0] == unitType
}
