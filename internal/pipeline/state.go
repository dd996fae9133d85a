package pipeline

import "fmt"

// State is a run's lifecycle position.
type State int

const (
	Idle State = iota
	Importing
	Staged
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Importing:
		return "importing"
	case Staged:
		return "staged"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// transitions lists the legal successors of each state. Failed is reachable
// from every non-terminal state and is not listed.
var transitions = map[State][]State{
	Idle:      {Importing, Staged},
	Importing: {Staged},
	Staged:    {Running, Completed},
	Running:   {Completed},
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
