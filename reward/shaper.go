// Package reward converts environment deltas into the scalar reward the
// learner consumes.
package reward

import (
	"log/slog"
	"math"

	"github.com/nstehr/vimy/vimy-scout/model"
)

// Config holds the reward coefficients.
type Config struct {
	SeeEnemy      float64 `yaml:"see_enemy"`
	UnitKill      float64 `yaml:"unit_kill"`
	StructureKill float64 `yaml:"structure_kill"`
	// Visibility is paid when the visible minimap area grows by at least
	// VisibilityThreshold cells between decisions. Zero disables it.
	Visibility          float64 `yaml:"visibility"`
	VisibilityThreshold int     `yaml:"visibility_threshold"`
	// StepRewards feeds rewards into every intermediate update instead of
	// holding the whole episode's reward for the terminal update.
	StepRewards bool `yaml:"step_rewards"`
}

func DefaultConfig() Config {
	return Config{
		SeeEnemy:            0.001,
		UnitKill:            1,
		StructureKill:       15,
		VisibilityThreshold: 17,
	}
}

// Shaper accumulates reward for one episode. The kill counters are latched
// high-water marks, so a bonus fires once per increment rather than on every
// tick the cumulative score stays raised.
type Shaper struct {
	cfg Config

	total   float64
	pending float64

	killedUnits      int
	killedStructures int
	visible          int
	visibleSeen      bool

	events []Event
}

func NewShaper(cfg Config) *Shaper {
	return &Shaper{cfg: cfg}
}

// Reset clears everything for a new episode.
func (s *Shaper) Reset() {
	*s = Shaper{cfg: s.cfg}
}

// ObserveScore pays the kill bonuses for any increase of the cumulative
// counters since the last call.
func (s *Shaper) ObserveScore(tick int, score model.Score) {
	if score.KilledUnits > s.killedUnits {
		s.killedUnits = score.KilledUnits
		s.add(Event{Kind: EventUnitKill, Tick: tick, Amount: s.cfg.UnitKill})
	}
	if score.KilledStructures > s.killedStructures {
		s.killedStructures = score.KilledStructures
		s.add(Event{Kind: EventStructureKill, Tick: tick, Amount: s.cfg.StructureKill})
	}
}

// ObserveSight pays the exploration bonus: visible hostile cells weighted by
// how far they are from our command center, so distant sightings are worth
// more than threats at the door. It also checks the visibility growth bonus.
func (s *Shaper) ObserveSight(obs *model.Observation) {
	enemies := obs.Minimap.PlayerRelative.Find(model.PlayerEnemy)
	if len(enemies) > 0 {
		mult := distance(obs.Screen.UnitType.Find(model.CommandCenter), enemies)
		if amount := float64(len(enemies)) * s.cfg.SeeEnemy * mult; amount != 0 {
			s.add(Event{Kind: EventSeeEnemy, Tick: obs.Tick, Amount: amount})
		}
	}

	visible := obs.Minimap.Visibility.Count(model.Visible)
	if s.visibleSeen && s.cfg.Visibility != 0 && visible-s.visible >= s.cfg.VisibilityThreshold {
		s.add(Event{Kind: EventVisibility, Tick: obs.Tick, Amount: s.cfg.Visibility})
	}
	s.visible = visible
	s.visibleSeen = true
}

// Milestone adds a fixed bonus earned by the build order.
func (s *Shaper) Milestone(tick int, amount float64, detail string) {
	if amount == 0 {
		return
	}
	s.add(Event{Kind: EventMilestone, Tick: tick, Amount: amount, Detail: detail})
}

// TakeStep returns the reward for an intermediate update and clears the
// pending portion. Without StepRewards the intermediate reward is always 0.
func (s *Shaper) TakeStep() float64 {
	if !s.cfg.StepRewards {
		return 0
	}
	r := s.pending
	s.pending = 0
	return r
}

// Terminal returns the reward for the terminal update.
func (s *Shaper) Terminal() float64 {
	if s.cfg.StepRewards {
		r := s.pending
		s.pending = 0
		return r
	}
	return s.total
}

// Total is everything accumulated this episode.
func (s *Shaper) Total() float64 { return s.total }

// Events returns the episode's reward events in order.
func (s *Shaper) Events() []Event { return append([]Event(nil), s.events...) }

// Tally summarises the episode's events by kind.
func (s *Shaper) Tally() Tally { return tally(s.events) }

func (s *Shaper) add(e Event) {
	s.total += e.Amount
	s.pending += e.Amount
	s.events = append(s.events, e)
	slog.Debug("reward", "kind", e.Kind, "tick", e.Tick, "amount", e.Amount, "total", s.total)
}

// distance is measured between the centroid of own and the centroid of
// hostile, with each squared axis delta rounded before the root. It is 0 when
// either set is empty.
func distance(own, hostile []model.Point) float64 {
	ox, oy, ok := model.Centroid(own)
	if !ok {
		return 0
	}
	hx, hy, ok := model.Centroid(hostile)
	if !ok {
		return 0
	}
	dx := math.RoundToEven((ox - hx) * (ox - hx))
	dy := math.RoundToEven((oy - hy) * (oy - hy))
	return math.Sqrt(dx + dy)
}
