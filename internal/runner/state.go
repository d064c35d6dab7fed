package runner

// State is a turn controller state.
type State int

const (
	StateAwaitingModel State = iota
	StateAwaitingTools
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingModel:
		return "AWAITING_MODEL"
	case StateAwaitingTools:
		return "AWAITING_TOOLS"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
