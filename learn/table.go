// Package learn holds the tabular action-value learner.
package learn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nstehr/vimy/vimy-scout/state"
)

// Params are fixed for a table's lifetime.
type Params struct {
	LearningRate float64 `yaml:"learning_rate"` // alpha
	Discount     float64 `yaml:"discount"`      // gamma
	// Epsilon is the probability of acting greedily. The remaining
	// probability mass picks uniformly from the whole catalog.
	Epsilon float64 `yaml:"epsilon"`
}

// DefaultParams: alpha 0.01, gamma 0.9, greedy nine times in ten.
func DefaultParams() Params {
	return Params{LearningRate: 0.01, Discount: 0.9, Epsilon: 0.9}
}

// Table is a sparse map from state key to a dense row of per-action values.
// Rows are created on first use, zero-filled. Not safe for concurrent use;
// one agent owns one table.
type Table struct {
	params   Params
	actions  int
	rows     map[state.Key][]float64
	excluded map[state.Key][]int
	rng      *rand.Rand
}

// NewTable creates an empty table over actions catalog entries.
func NewTable(actions int, p Params, rng *rand.Rand) *Table {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Table{
		params:   p,
		actions:  actions,
		rows:     make(map[state.Key][]float64),
		excluded: make(map[state.Key][]int),
		rng:      rng,
	}
}

func (t *Table) Params() Params { return t.params }

// Actions is the row width.
func (t *Table) Actions() int { return t.actions }

// Len is the number of materialized rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether k already has a row.
func (t *Table) Has(k state.Key) bool {
	_, ok := t.rows[k]
	return ok
}

// Materialize returns the row for k, creating a zero row if absent.
func (t *Table) Materialize(k state.Key) []float64 {
	row, ok := t.rows[k]
	if !ok {
		row = make([]float64, t.actions)
		t.rows[k] = row
	}
	return row
}

// Value reads a single estimate, materializing the row.
func (t *Table) Value(k state.Key, a int) float64 {
	return t.Materialize(k)[a]
}

// Choose picks an action for k. Excluded indices are recorded against k and
// masked from the greedy branch; the exploratory branch samples the full
// catalog regardless. With every action excluded it falls back to a uniform
// pick.
func (t *Table) Choose(k state.Key, excluded []int) int {
	row := t.Materialize(k)
	t.excluded[k] = append([]int(nil), excluded...)

	if t.rng.Float64() >= t.params.Epsilon {
		return t.rng.Intn(t.actions)
	}

	mask := t.mask(excluded)
	candidates := make([]int, 0, t.actions)
	for a := 0; a < t.actions; a++ {
		if !mask[a] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return t.rng.Intn(t.actions)
	}

	// Shuffle so ties go to a random candidate rather than the lowest index.
	t.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	best := candidates[0]
	for _, a := range candidates[1:] {
		if row[a] > row[best] {
			best = a
		}
	}
	return best
}

// Learn applies one temporal-difference step to (prev, a) towards
// reward + gamma * max Q(next, .), masking whatever was excluded the last time
// next was chosen from. A terminal next contributes no bootstrap. A
// self-transition is ignored.
func (t *Table) Learn(prev state.Key, a int, reward float64, next state.Key) {
	if prev == next {
		return
	}
	t.Materialize(next)
	row := t.Materialize(prev)

	target := reward
	if !next.IsTerminal() {
		target += t.params.Discount * t.maxValue(next)
	}
	row[a] += t.params.LearningRate * (target - row[a])
}

// Excluded returns the exclusion set last recorded for k.
func (t *Table) Excluded(k state.Key) []int {
	return append([]int(nil), t.excluded[k]...)
}

func (t *Table) maxValue(k state.Key) float64 {
	row := t.rows[k]
	mask := t.mask(t.excluded[k])
	best := math.Inf(-1)
	for a, v := range row {
		if !mask[a] && v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		for _, v := range row {
			best = math.Max(best, v)
		}
	}
	return best
}

func (t *Table) mask(excluded []int) []bool {
	mask := make([]bool, t.actions)
	for _, a := range excluded {
		if a >= 0 && a < t.actions {
			mask[a] = true
		}
	}
	return mask
}

// Row is the persisted form of one table row.
type Row struct {
	Key    string
	Values []float64
}

// Rows copies out every row, keyed by the canonical key text.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.rows))
	for k, v := range t.rows {
		out = append(out, Row{Key: k.String(), Values: append([]float64(nil), v...)})
	}
	return out
}

// Restore installs previously saved rows, replacing any existing ones with
// the same key.
func (t *Table) Restore(rows []Row) error {
	for _, r := range rows {
		if len(r.Values) != t.actions {
			return fmt.Errorf("restore row %q: %d values, table has %d actions", r.Key, len(r.Values), t.actions)
		}
		k, err := state.ParseKey(r.Key)
		if err != nil {
			return fmt.Errorf("restore row: %w", err)
		}
		t.rows[k] = append([]float64(nil), r.Values...)
	}
	return nil
}
