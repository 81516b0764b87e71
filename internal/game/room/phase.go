package room

// Phase is a stage of a round. It gates which room operations are legal.
type Phase string

const (
	PhaseIdle          Phase = "Idle"
	PhaseConfiguring   Phase = "Configuring"
	PhaseReading       Phase = "Reading"
	PhaseInvestigation Phase = "Investigation"
	PhaseVoting        Phase = "Voting"
	PhaseResultReview  Phase = "ResultReview"
	PhaseArchived      Phase = "Archived"
)

// successors maps each phase to the phase the host advances it to.
// PhaseArchived is resolved by next because its successor depends on
// whether a script is selected.
var successors = map[Phase]Phase{
	PhaseIdle:          PhaseConfiguring,
	PhaseConfiguring:   PhaseReading,
	PhaseReading:       PhaseInvestigation,
	PhaseInvestigation: PhaseVoting,
	PhaseVoting:        PhaseResultReview,
	PhaseResultReview:  PhaseArchived,
}

// String returns the wire name of the phase.
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is one of the enumerated phases.
func (p Phase) Valid() bool {
	_, ok := successors[p]
	return ok || p == PhaseArchived
}

// next returns the phase that follows p.
//
// Postcondition: Returns (successor, true) for every valid phase, or ("", false).
func (p Phase) next(scriptSelected bool) (Phase, bool) {
	if p == PhaseArchived {
		if scriptSelected {
			return PhaseConfiguring, true
		}
		return PhaseIdle, true
	}
	n, ok := successors[p]
	return n, ok
}

// namesEditable reports whether players may still rename themselves.
func (p Phase) namesEditable() bool {
	return p == PhaseIdle || p == PhaseConfiguring
}
