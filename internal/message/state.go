package message

// State is the lifecycle state of a message.
type State string

const (
	StateReceived   State = "RECEIVED"
	StateRead       State = "READ"
	StateDiscarded  State = "DISCARDED"
	StateProcessing State = "PROCESSING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// States lists every state, in lifecycle order.
var States = []State{StateReceived, StateRead, StateDiscarded, StateProcessing, StateDone, StateFailed}

func ParseState(s string) (State, bool) {
	switch State(s) {
	case StateReceived, StateRead, StateDiscarded, StateProcessing, StateDone, StateFailed:
		return State(s), true
	}
	return "", false
}

// transitions is the full lifecycle table. Absent keys and absent values both
// mean "not allowed"; no state may transition to itself.
var transitions = map[State][]State{
	StateReceived:   {StateRead},
	StateRead:       {StateDiscarded, StateProcessing, StateDone, StateFailed},
	StateProcessing: {StateDone, StateFailed},
	StateDiscarded:  {},
	StateDone:       {},
	StateFailed:     {},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
