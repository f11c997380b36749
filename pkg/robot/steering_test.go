package robot

import (
	"context"
	"errors"
	"testing"
)

// fakeServo stores raw positions like a Feetech servo.
type fakeServo struct {
	raw      int
	disabled bool
	err      error
}

func (s *fakeServo) Position(ctx context.Context) (int, error) {
	return s.raw, s.err
}

func (s *fakeServo) SetPosition(ctx context.Context, pos int) error {
	if s.err != nil {
		return s.err
	}
	s.raw = pos
	return nil
}

func (s *fakeServo) Disable(ctx context.Context) error {
	s.disabled = true
	return nil
}

type fakeBus struct {
	closed bool
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func TestServoSteering_Position(t *testing.T) {
	cal := ServoCalibration{ID: 1, RangeMin: 1000, RangeMax: 3000, Degrees: 200}
	servo := &fakeServo{raw: 2100}
	s := newServoSteering(servo, &fakeBus{}, cal)
	ctx := context.Background()

	pos, err := s.Position(ctx)
	if err != nil || pos != 10 {
		t.Errorf("Position() = %d, %v, want 10", pos, err)
	}

	tests := []struct {
		deg      int
		expected int
	}{
		{0, 2000},
		{-10, 1900},
		{100, 3000},
		{150, 3000}, // clamped
	}
	for _, tt := range tests {
		if err := s.SetPosition(ctx, tt.deg); err != nil {
			t.Fatalf("SetPosition(%d): %v", tt.deg, err)
		}
		if servo.raw != tt.expected {
			t.Errorf("SetPosition(%d) wrote %d, want %d", tt.deg, servo.raw, tt.expected)
		}
	}
}

func TestServoSteering_RoundTrip(t *testing.T) {
	s := newServoSteering(&fakeServo{}, &fakeBus{}, DefaultServoCalibration())
	ctx := context.Background()

	// An avoidance pivot and its undo land back on the start position.
	for _, deg := range []int{0, 10, 0} {
		if err := s.SetPosition(ctx, deg); err != nil {
			t.Fatal(err)
		}
		got, err := s.Position(ctx)
		if err != nil || got != deg {
			t.Errorf("Position() after SetPosition(%d) = %d, %v", deg, got, err)
		}
	}
}

func TestServoSteering_Errors(t *testing.T) {
	servo := &fakeServo{err: errors.New("timeout")}
	s := newServoSteering(servo, &fakeBus{}, DefaultServoCalibration())

	if _, err := s.Position(context.Background()); !errors.Is(err, servo.err) {
		t.Errorf("Position() = %v, want %v", err, servo.err)
	}
	if err := s.SetPosition(context.Background(), 5); !errors.Is(err, servo.err) {
		t.Errorf("SetPosition() = %v, want %v", err, servo.err)
	}
}

func TestServoSteering_Close(t *testing.T) {
	servo := &fakeServo{}
	bus := &fakeBus{}
	s := newServoSteering(servo, bus, DefaultServoCalibration())

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !servo.disabled || !bus.closed {
		t.Errorf("Close() left disabled=%v closed=%v, want both true", servo.disabled, bus.closed)
	}
}

func TestTachoSteering(t *testing.T) {
	m := &fakeMotor{position: -37}
	s, err := NewTachoSteering(m, 300)
	if err != nil {
		t.Fatalf("NewTachoSteering: %v", err)
	}
	if m.speed != 300 {
		t.Errorf("speed = %d, want 300", m.speed)
	}

	pos, err := s.Position(context.Background())
	if err != nil || pos != -37 {
		t.Errorf("Position() = %d, %v, want -37", pos, err)
	}
	if err := s.SetPosition(context.Background(), -27); err != nil {
		t.Fatal(err)
	}
	if m.target != -27 || m.command != CommandRunToAbsPos {
		t.Errorf("target = %d (%s), want -27 (%s)", m.target, m.command, CommandRunToAbsPos)
	}
}
