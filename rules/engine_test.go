package rules

import (
	"slices"
	"strings"
	"testing"

	"github.com/nstehr/vimy/vimy-scout/catalog"
	"github.com/nstehr/vimy/vimy-scout/state"
)

func newEngine(t *testing.T, rules []*Rule) *Engine {
	t.Helper()
	e, err := NewEngine(catalog.Default(), rules)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func kindsOf(cat *catalog.Catalog, idx []int) map[catalog.Kind]int {
	out := make(map[catalog.Kind]int)
	for _, i := range idx {
		out[cat.At(i).Kind]++
	}
	return out
}

func TestDefaultRulesCompile(t *testing.T) {
	e := newEngine(t, DefaultRules())
	if len(e.Rules()) != 9 {
		t.Errorf("expected 9 rules, got %d", len(e.Rules()))
	}
}

func TestExcludedOpeningState(t *testing.T) {
	cat := catalog.Default()
	e := newEngine(t, DefaultRules())

	// Fresh base: a command center, workers, no army, nothing built.
	env := NewEnv(state.Features{CommandCenters: 1, SupplyCap: 15, WorkerSupply: 12, SupplyFree: 3})
	got := kindsOf(cat, e.Excluded(env))

	want := map[catalog.Kind]int{
		catalog.BuildBarracks:       1,
		catalog.BuildEngineeringBay: 1,
		catalog.BuildTurret:         1,
		catalog.BuildRefinery:       1,
		catalog.BuildTechLab:        1,
		catalog.TrainReaper:         1,
		catalog.TrainMarine:         1,
		catalog.Scout:               16,
	}
	for k, n := range want {
		if got[k] != n {
			t.Errorf("kind %s excluded %d times, want %d", k, got[k], n)
		}
	}
	if got[catalog.BuildSupplyDepot] != 0 || got[catalog.DoNothing] != 0 {
		t.Errorf("depot and do-nothing should be legal, got %v", got)
	}
}

func TestExcludedSupplyDepotCap(t *testing.T) {
	cat := catalog.Default()
	e := newEngine(t, DefaultRules())
	depot, _ := cat.Index("buildsupplydepot")

	tests := []struct {
		name     string
		f        state.Features
		excluded bool
	}{
		{"room for more", state.Features{SupplyDepots: 2, WorkerSupply: 10}, false},
		{"three built", state.Features{SupplyDepots: 3, WorkerSupply: 10}, true},
		{"no workers", state.Features{SupplyDepots: 0, WorkerSupply: 0}, true},
	}
	for _, tc := range tests {
		got := slices.Contains(e.Excluded(NewEnv(tc.f)), depot)
		if got != tc.excluded {
			t.Errorf("%s: depot excluded = %v, want %v", tc.name, got, tc.excluded)
		}
	}
}

func TestExcludedArmyUnlocksScouting(t *testing.T) {
	cat := catalog.Default()
	e := newEngine(t, DefaultRules())
	env := NewEnv(state.Features{ArmySupply: 2, Barracks: 1, SupplyDepots: 1, WorkerSupply: 8, SupplyFree: 4})
	got := kindsOf(cat, e.Excluded(env))
	if got[catalog.Scout] != 0 {
		t.Errorf("scouts excluded with an army present: %d", got[catalog.Scout])
	}
	if got[catalog.TrainMarine] != 0 {
		t.Error("marine should be legal with a barracks and free supply")
	}
	if got[catalog.TrainReaper] != 1 {
		t.Error("reaper should need a refinery")
	}
}

func TestExcludedTechLabIsOneShot(t *testing.T) {
	cat := catalog.Default()
	e := newEngine(t, DefaultRules())
	techLab, _ := cat.Index("buildtechlab")

	env := NewEnv(state.Features{Barracks: 1})
	if slices.Contains(e.Excluded(env), techLab) {
		t.Error("tech lab should be legal before it is built")
	}
	env.TechLabBuilt = true
	if !slices.Contains(e.Excluded(env), techLab) {
		t.Error("tech lab should be excluded once built")
	}
}

func TestExcludedIsSorted(t *testing.T) {
	e := newEngine(t, DefaultRules())
	got := e.Excluded(NewEnv(state.Features{}))
	if !slices.IsSorted(got) {
		t.Errorf("excluded indices not sorted: %v", got)
	}
}

func TestCompileErrorIsReported(t *testing.T) {
	_, err := NewEngine(catalog.Default(), []*Rule{{Name: "bad", Kind: catalog.Scout, ConditionSrc: `NoSuchField > 1`}})
	if err == nil || !strings.Contains(err.Error(), `"bad"`) {
		t.Fatalf("expected compile error naming the rule, got %v", err)
	}
	_, err = NewEngine(catalog.Default(), []*Rule{{Name: "not-bool", Kind: catalog.Scout, ConditionSrc: `Barracks + 1`}})
	if err == nil {
		t.Fatal("expected non-boolean condition to fail")
	}
}

func TestWithOverrides(t *testing.T) {
	rules, err := WithOverrides(DefaultRules(), map[string]string{
		"scout":       `ArmySupply < 4`,
		"buildmarine": `SupplyFree < 2`,
	})
	if err != nil {
		t.Fatalf("WithOverrides failed: %v", err)
	}
	cat := catalog.Default()
	e := newEngine(t, rules)
	got := kindsOf(cat, e.Excluded(NewEnv(state.Features{ArmySupply: 3, SupplyFree: 1, Barracks: 1})))
	if got[catalog.Scout] != 16 {
		t.Errorf("override scout rule not applied: %d", got[catalog.Scout])
	}
	if got[catalog.TrainMarine] != 1 {
		t.Error("override marine rule not applied")
	}

	// The defaults are untouched.
	if DefaultRules()[8].ConditionSrc != `!HasArmy()` {
		t.Error("WithOverrides mutated the default rules")
	}

	if _, err := WithOverrides(DefaultRules(), map[string]string{"nukes": "true"}); err == nil {
		t.Error("expected unknown kind to fail")
	}
}

func TestWithOverridesAddsMissingKind(t *testing.T) {
	rules, err := WithOverrides(nil, map[string]string{"donothing": "true"})
	if err != nil {
		t.Fatalf("WithOverrides failed: %v", err)
	}
	e := newEngine(t, rules)
	if got := e.Excluded(NewEnv(state.Features{})); !slices.Equal(got, []int{0}) {
		t.Errorf("Excluded = %v, want [0]", got)
	}
}
