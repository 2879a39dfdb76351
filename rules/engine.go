package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/vimy-scout/catalog"
)

// Engine evaluates the compiled exclusion rules for one state at a time.
type Engine struct {
	rules   []*Rule
	catalog *catalog.Catalog
}

// NewEngine compiles all rule conditions into expr bytecode.
func NewEngine(cat *catalog.Catalog, rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, catalog: cat}, nil
}

// Excluded returns the sorted catalog indices that are illegal under env.
// A rule whose condition fails to evaluate excludes nothing.
func (e *Engine) Excluded(env Env) []int {
	set := make(map[int]struct{})
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}
		slog.Debug("action excluded", "rule", r.Name, "kind", r.Kind)
		for _, i := range e.catalog.IndicesOf(r.Kind) {
			set[i] = struct{}{}
		}
	}

	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Rules lists rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		cp := *r
		cp.program = prog
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}
