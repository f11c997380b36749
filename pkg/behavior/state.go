package behavior

import "fmt"

// Kind identifies the active state.
type Kind int

const (
	Start Kind = iota
	Searching
	AvoidingBack
	AvoidingTurn
	AvoidingAdvance
	Found
)

var kindNames = [...]string{
	Start:           "start",
	Searching:       "searching",
	AvoidingBack:    "avoiding-back",
	AvoidingTurn:    "avoiding-turn",
	AvoidingAdvance: "avoiding-advance",
	Found:           "found",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// State is the tagged union of machine states. Ticks is the number of ticks
// already spent in an avoidance phase; it is zero for the other kinds and
// on entry. The zero State is Start.
type State struct {
	Kind  Kind
	Ticks int
}

func (s State) String() string {
	switch s.Kind {
	case AvoidingBack, AvoidingTurn, AvoidingAdvance:
		return fmt.Sprintf("%s{%d}", s.Kind, s.Ticks)
	default:
		return s.Kind.String()
	}
}

// Terminal reports whether the machine has halted.
func (s State) Terminal() bool {
	return s.Kind == Found
}

// Avoiding reports whether s is one of the three avoidance phases.
func (s State) Avoiding() bool {
	switch s.Kind {
	case AvoidingBack, AvoidingTurn, AvoidingAdvance:
		return true
	}
	return false
}

func enter(k Kind) State {
	return State{Kind: k}
}
