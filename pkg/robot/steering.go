package robot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Steering is the auxiliary turn motor. Positions are absolute, in degrees.
type Steering interface {
	Position(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, pos int) error
	Close() error
}

// Steering backends.
const (
	SteeringTacho = "ev3"
	SteeringServo = "feetech"
)

// TachoSteering drives the turn motor through an ev3dev tacho motor.
type TachoSteering struct {
	motor Motor
}

// NewTachoSteering prepares motor for position control at speed counts per
// second.
func NewTachoSteering(motor Motor, speed int) (*TachoSteering, error) {
	if err := motor.SetSpeed(speed); err != nil {
		return nil, fmt.Errorf("set turn speed: %w", err)
	}
	return &TachoSteering{motor: motor}, nil
}

func (s *TachoSteering) Position(ctx context.Context) (int, error) {
	return s.motor.Position()
}

func (s *TachoSteering) SetPosition(ctx context.Context, pos int) error {
	return s.motor.RunToPosition(pos)
}

func (s *TachoSteering) Close() error {
	return s.motor.Stop()
}

// servoDevice is the part of a Feetech servo used for steering.
type servoDevice interface {
	Position(ctx context.Context) (int, error)
	SetPosition(ctx context.Context, pos int) error
	Disable(ctx context.Context) error
}

// ServoSteering drives the turn motor through a Feetech STS servo.
type ServoSteering struct {
	bus   io.Closer
	servo servoDevice
	cal   ServoCalibration
}

func newServoSteering(servo servoDevice, bus io.Closer, cal ServoCalibration) *ServoSteering {
	return &ServoSteering{
		bus:   bus,
		servo: servo,
		cal:   cal,
	}
}

// NewServoSteering opens the servo bus on port and enables torque on the
// calibrated servo.
func NewServoSteering(ctx context.Context, port string, cal ServoCalibration) (*ServoSteering, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	found, err := bus.Scan(ctx, cal.ID, cal.ID)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("scan servo %d: %w", cal.ID, err)
	}
	if len(found) == 0 {
		bus.Close()
		return nil, fmt.Errorf("servo %d on %s: %w", cal.ID, port, ErrDeviceNotFound)
	}

	servo := feetech.NewServo(bus, found[0].ID, found[0].Model)
	if err := servo.Enable(ctx); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable servo: %w", err)
	}

	return newServoSteering(servo, bus, cal), nil
}

func (s *ServoSteering) Position(ctx context.Context) (int, error) {
	raw, err := s.servo.Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("read servo position: %w", err)
	}
	return s.cal.Normalize(raw), nil
}

func (s *ServoSteering) SetPosition(ctx context.Context, pos int) error {
	if err := s.servo.SetPosition(ctx, s.cal.Denormalize(pos)); err != nil {
		return fmt.Errorf("write servo position: %w", err)
	}
	return nil
}

// Close disables torque and closes the bus.
func (s *ServoSteering) Close() error {
	if err := s.servo.Disable(context.Background()); err != nil {
		s.bus.Close()
		return fmt.Errorf("disable servo: %w", err)
	}
	return s.bus.Close()
}
