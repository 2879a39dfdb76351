package reward

// EventKind names the source of a reward contribution.
type EventKind string

const (
	EventSeeEnemy      EventKind = "see_enemy"
	EventUnitKill      EventKind = "unit_kill"
	EventStructureKill EventKind = "structure_kill"
	EventVisibility    EventKind = "visibility"
	EventMilestone     EventKind = "milestone"
)

// Event records one reward contribution so the episode summary can say where
// the reward came from.
type Event struct {
	Kind   EventKind
	Tick   int
	Amount float64
	Detail string
}

// Tally sums events by kind.
type Tally struct {
	Count  map[EventKind]int
	Amount map[EventKind]float64
}

func tally(events []Event) Tally {
	t := Tally{Count: make(map[EventKind]int), Amount: make(map[EventKind]float64)}
	for _, e := range events {
		t.Count[e.Kind]++
		t.Amount[e.Kind] += e.Amount
	}
	return t
}
