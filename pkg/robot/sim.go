package robot

import (
	"context"
	"fmt"
	"sync"

	"github.com/gwillem/seeker/pkg/behavior"
)

// SimConfig shapes the simulated arena.
type SimConfig struct {
	// StartDistance is the free space ahead after every change of heading.
	StartDistance int
	// Headings is the number of walls met before the robot faces the target.
	Headings int
	// TargetDistance is how far the target patch sits from the far wall.
	TargetDistance int
	// Cues lists the sound cues the simulator accepts.
	Cues []string
}

// DefaultSimConfig returns an arena with two walls before the target.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		StartDistance:  80,
		Headings:       2,
		TargetDistance: 30,
		Cues:           []string{behavior.CueTargetFound},
	}
}

// Sim is a deterministic stand-in for the Rig. Driving forward closes the
// distance to the wall ahead and reversing opens it. Pivoting the turn motor
// away from zero faces the robot to a new heading. Once Headings walls have
// been avoided, the yellow patch lies TargetDistance short of the wall.
type Sim struct {
	cfg SimConfig

	mu       sync.Mutex
	distance int
	heading  int
	turn     int
	played   []string
	stopped  bool
}

// NewSim creates a simulator facing the first wall.
func NewSim(cfg SimConfig) *Sim {
	return &Sim{
		cfg:      cfg,
		distance: cfg.StartDistance,
	}
}

var (
	simFloor  = behavior.Color{R: 340, G: 330, B: 280}
	simTarget = behavior.Color{R: 120, G: 980, B: 900}
)

func (s *Sim) onTarget() bool {
	return s.heading >= s.cfg.Headings && s.distance <= s.cfg.TargetDistance
}

// Sample reports the simulated sensors.
func (s *Sim) Sample(ctx context.Context) (behavior.World, error) {
	if err := ctx.Err(); err != nil {
		return behavior.World{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := behavior.World{
		Color:    simFloor,
		Distance: s.distance,
		Touched:  s.distance <= 0,
		Turn:     s.turn,
	}
	if s.onTarget() {
		w.Color = simTarget
	}
	return w, nil
}

// Apply moves the simulated robot for one tick.
func (s *Sim) Apply(ctx context.Context, d behavior.Device, turn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Negative duty cycle is forward and closes the distance.
	speed := (d.LeftSpeed + d.RightSpeed) / 2
	s.distance += speed / 10
	if s.distance < 0 {
		s.distance = 0
	}

	next := turn + d.TurnDelta
	if s.turn == 0 && next != 0 {
		s.heading++
		s.distance = s.cfg.StartDistance
	}
	s.turn = next
	s.stopped = d.Stopped()

	if d.Sound != "" {
		if !s.knownCue(d.Sound) {
			return fmt.Errorf("unknown sound cue %q", d.Sound)
		}
		s.played = append(s.played, d.Sound)
	}
	return nil
}

func (s *Sim) knownCue(cue string) bool {
	for _, c := range s.cfg.Cues {
		if c == cue {
			return true
		}
	}
	return false
}

// Stop halts the simulated wheels.
func (s *Sim) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

// Close releases nothing; it exists so Sim and Rig are interchangeable.
func (s *Sim) Close() error {
	return nil
}

// Heading returns the number of headings taken so far.
func (s *Sim) Heading() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heading
}

// Played returns the cues played so far.
func (s *Sim) Played() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.played...)
}

// Stopped reports whether the wheels were last commanded to stand still.
func (s *Sim) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
