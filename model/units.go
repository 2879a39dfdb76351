package model

// Unit type ids as reported in the screen unit_type layer.
const (
	CommandCenter  = 18
	SupplyDepot    = 19
	Refinery       = 20
	Barracks       = 21
	EngineeringBay = 22
	MissileTurret  = 23
	SCV            = 45
	Marine         = 49
	MineralField   = 341
	VespeneGeyser  = 342
)

// Values of the player_relative layers.
const (
	PlayerNone    = 0
	PlayerSelf    = 1
	PlayerAlly    = 2
	PlayerNeutral = 3
	PlayerEnemy   = 4
)

// Visible is the minimap visibility value for cells currently in sight.
const Visible = 1
