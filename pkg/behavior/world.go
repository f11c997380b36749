// Package behavior implements the decision logic of the seeker robot: a
// deterministic state machine turning a per-tick sensor snapshot into motor
// and sound commands. It performs no I/O.
package behavior

import "fmt"

// MaxColor is the largest raw value the color sensor reports per channel in
// RGB-RAW mode.
const MaxColor = 1020

// Color is a raw RGB reading.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// IsTargetColor reports whether c looks like the yellow target patch, using
// the default sensor range.
func IsTargetColor(c Color) bool {
	return isTarget(c, MaxColor)
}

func isTarget(c Color, max int) bool {
	half := max / 2
	return c.R < half && c.G > half && c.B > half
}

// World is the snapshot of all sensor readings taken at the start of a tick.
type World struct {
	Tick     uint64
	Color    Color
	Distance int  // infrared proximity units
	Touched  bool // touch sensor pressed
	Turn     int  // absolute turn motor position
}

// Device is the command computed for one tick.
type Device struct {
	LeftSpeed  int    // duty cycle, negative is forward
	RightSpeed int    // duty cycle, negative is forward
	TurnDelta  int    // added to the current turn position
	Sound      string // cue to play, empty for none
}

// Stopped reports whether both wheels are commanded to stand still.
func (d Device) Stopped() bool {
	return d.LeftSpeed == 0 && d.RightSpeed == 0
}
