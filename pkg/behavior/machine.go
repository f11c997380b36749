package behavior

import (
	"errors"
	"fmt"
)

// CueTargetFound is the sound played when the target patch is reached.
const CueTargetFound = "target-found"

// Config holds the tuning constants of the state machine. It is a value type;
// a Config is never modified after the machine starts using it.
type Config struct {
	ForwardSpeed  int    `json:"forward_speed"`  // duty cycle while searching
	BackwardSpeed int    `json:"backward_speed"` // duty cycle while backing up
	MinDistance   int    `json:"min_distance"`   // proximity below this triggers avoidance
	BackTicks     int    `json:"back_ticks"`     // ticks spent reversing
	AdvanceTicks  int    `json:"advance_ticks"`  // ticks spent advancing with wheels turned
	TurnDelta     int    `json:"turn_delta"`     // turn motor displacement while avoiding
	MaxColor      int    `json:"max_color"`
	Cue           string `json:"cue"`
}

// DefaultConfig returns the tuning used on the reference robot.
func DefaultConfig() Config {
	return Config{
		ForwardSpeed:  -50,
		BackwardSpeed: 50,
		MinDistance:   25,
		BackTicks:     10,
		AdvanceTicks:  10,
		TurnDelta:     10,
		MaxColor:      MaxColor,
		Cue:           CueTargetFound,
	}
}

// Validate checks that the avoidance phases can complete.
func (c Config) Validate() error {
	if c.BackTicks < 1 {
		return fmt.Errorf("back_ticks must be at least 1, got %d", c.BackTicks)
	}
	if c.AdvanceTicks < 1 {
		return fmt.Errorf("advance_ticks must be at least 1, got %d", c.AdvanceTicks)
	}
	if c.MaxColor < 1 {
		return fmt.Errorf("max_color must be positive, got %d", c.MaxColor)
	}
	if c.Cue == "" {
		return errors.New("cue must not be empty")
	}
	return nil
}

// IsTarget reports whether c is the target color under this configuration.
func (c Config) IsTarget(col Color) bool {
	return isTarget(col, c.MaxColor)
}

// Next returns the state following s once w has been observed. A state of
// unknown kind is returned unchanged.
func (c Config) Next(s State, w World) State {
	switch s.Kind {
	case Start:
		return enter(Searching)
	case Searching:
		if c.IsTarget(w.Color) {
			return enter(Found)
		}
		if w.Distance < c.MinDistance || w.Touched {
			return enter(AvoidingBack)
		}
		return s
	case AvoidingBack:
		if s.Ticks+1 < c.BackTicks {
			return State{Kind: AvoidingBack, Ticks: s.Ticks + 1}
		}
		return enter(AvoidingTurn)
	case AvoidingTurn:
		return enter(AvoidingAdvance)
	case AvoidingAdvance:
		if s.Ticks+1 < c.AdvanceTicks {
			return State{Kind: AvoidingAdvance, Ticks: s.Ticks + 1}
		}
		return enter(Searching)
	default:
		// Found is absorbing. Unknown kinds are held as well.
		return s
	}
}

// Output returns the device command for s. A state of unknown kind stands
// still.
func (c Config) Output(s State) Device {
	switch s.Kind {
	case Start:
		return Device{}
	case Searching:
		return Device{LeftSpeed: c.ForwardSpeed, RightSpeed: c.ForwardSpeed}
	case AvoidingBack:
		return Device{LeftSpeed: c.BackwardSpeed, RightSpeed: c.BackwardSpeed}
	case AvoidingTurn:
		return Device{TurnDelta: c.TurnDelta}
	case AvoidingAdvance:
		// Straighten the wheels on the last tick.
		if s.Ticks == c.AdvanceTicks-1 {
			return Device{TurnDelta: -c.TurnDelta}
		}
		half := c.ForwardSpeed / 2
		return Device{LeftSpeed: half, RightSpeed: half}
	case Found:
		return Device{Sound: c.Cue}
	default:
		return Device{}
	}
}

// Step computes the transition for w and the output of the state entered.
func (c Config) Step(s State, w World) (State, Device) {
	next := c.Next(s, w)
	return next, c.Output(next)
}
