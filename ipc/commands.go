package ipc

import "github.com/nstehr/vimy/vimy-scout/model"

// Primitive function ids understood by the environment. They use the
// environment's own spelling so no translation table is needed on its side.
const (
	FuncNoOp                = "no_op"
	FuncSelectPoint         = "select_point"
	FuncSelectArmy          = "select_army"
	FuncBuildSupplyDepot    = "Build_SupplyDepot_screen"
	FuncBuildBarracks       = "Build_Barracks_screen"
	FuncBuildEngineeringBay = "Build_EngineeringBay_screen"
	FuncBuildMissileTurret  = "Build_MissileTurret_screen"
	FuncBuildRefinery       = "Build_Refinery_screen"
	FuncBuildTechLab        = "Build_TechLab_quick"
	FuncTrainMarine         = "Train_Marine_quick"
	FuncTrainReaper         = "Train_Reaper_quick"
	FuncMoveMinimap         = "Move_minimap"
	FuncAttackMinimap       = "Attack_minimap"
	FuncHarvestGather       = "Harvest_Gather_screen"
)

// Modifier is the leading argument of every command.
type Modifier int

const (
	NotQueued Modifier = 0
	Queued    Modifier = 1
	// SelectAllType makes select_point grab every unit of the clicked type.
	SelectAllType Modifier = 2
)

// Command is one primitive instruction for the environment.
type Command struct {
	Function string       `json:"function"`
	Modifier Modifier     `json:"modifier"`
	Target   *model.Point `json:"target,omitempty"`
}

func (c Command) IsNoOp() bool { return c.Function == FuncNoOp }

func NoOp() Command { return Command{Function: FuncNoOp} }

func SelectPoint(mod Modifier, p model.Point) Command {
	return Command{Function: FuncSelectPoint, Modifier: mod, Target: &p}
}

func SelectArmy() Command { return Command{Function: FuncSelectArmy, Modifier: NotQueued} }

// At issues fn against a target cell.
func At(fn string, mod Modifier, p model.Point) Command {
	return Command{Function: fn, Modifier: mod, Target: &p}
}

// Quick issues a targetless fn.
func Quick(fn string, mod Modifier) Command {
	return Command{Function: fn, Modifier: mod}
}
