package agent

// Phase is the position within the three-tick cycle that turns one decision
// into primitive commands.
type Phase int

const (
	// Decide chooses an action and selects whatever has to carry it out.
	Decide Phase = iota
	// Execute issues the build, train or attack command.
	Execute
	// Followup sends a borrowed worker back to harvesting.
	Followup
)

// Next is the phase after p. Followup wraps to Decide.
func (p Phase) Next() Phase {
	switch p {
	case Decide:
		return Execute
	case Execute:
		return Followup
	default:
		return Decide
	}
}

func (p Phase) String() string {
	switch p {
	case Decide:
		return "decide"
	case Execute:
		return "execute"
	case Followup:
		return "followup"
	}
	return "unknown"
}
