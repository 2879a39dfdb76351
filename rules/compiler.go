package rules

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-scout/catalog"
)

// DefaultRules is the static legality table: structure caps mirror how many
// placement slots exist for each building, and every tier needs the one
// below it.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         "supply-depot-cap",
			Kind:         catalog.BuildSupplyDepot,
			ConditionSrc: `SupplyDepots >= 3 || !HasWorkers()`,
		},
		{
			Name:         "barracks-cap",
			Kind:         catalog.BuildBarracks,
			ConditionSrc: `SupplyDepots == 0 || Barracks >= 4 || !HasWorkers()`,
		},
		{
			Name:         "engineering-bay-cap",
			Kind:         catalog.BuildEngineeringBay,
			ConditionSrc: `Barracks == 0 || EngineeringBays >= 1`,
		},
		{
			Name:         "turret-cap",
			Kind:         catalog.BuildTurret,
			ConditionSrc: `EngineeringBays == 0 || Turrets >= 2`,
		},
		{
			Name:         "refinery-cap",
			Kind:         catalog.BuildRefinery,
			ConditionSrc: `Turrets == 0 || Refineries >= 2`,
		},
		{
			Name:         "tech-lab-once",
			Kind:         catalog.BuildTechLab,
			ConditionSrc: `Barracks == 0 || TechLabBuilt`,
		},
		{
			Name:         "reaper-needs-gas",
			Kind:         catalog.TrainReaper,
			ConditionSrc: `SupplyFree <= 0 || Barracks == 0 || Refineries == 0`,
		},
		{
			Name:         "marine-needs-barracks",
			Kind:         catalog.TrainMarine,
			ConditionSrc: `SupplyFree <= 0 || Barracks == 0`,
		},
		{
			Name:         "scout-needs-army",
			Kind:         catalog.Scout,
			ConditionSrc: `!HasArmy()`,
		},
	}
}

// WithOverrides replaces the condition of the default rule for each named
// action kind, and adds a rule for kinds that have none.
func WithOverrides(base []*Rule, overrides map[string]string) ([]*Rule, error) {
	out := make([]*Rule, 0, len(base)+len(overrides))
	byKind := make(map[catalog.Kind]*Rule, len(base))
	for _, r := range base {
		cp := *r
		out = append(out, &cp)
		byKind[cp.Kind] = &cp
	}
	for name, src := range overrides {
		kind, ok := catalog.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("rule override: unknown action kind %q", name)
		}
		if r, ok := byKind[kind]; ok {
			r.ConditionSrc = src
			continue
		}
		r := &Rule{Name: name + "-override", Kind: kind, ConditionSrc: src}
		out = append(out, r)
		byKind[kind] = r
	}
	return out, nil
}
