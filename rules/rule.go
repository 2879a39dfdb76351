package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/vimy-scout/catalog"
)

// Rule excludes every catalog action of Kind while its condition holds.
type Rule struct {
	Name         string       // human-readable identifier
	Kind         catalog.Kind // action kind the rule masks
	ConditionSrc string       // expr source, true means excluded
	program      *vm.Program  // compiled bytecode
}
