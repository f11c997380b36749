package robot

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwillem/seeker/pkg/behavior"
)

// Rig is the physical robot: two drive motors, a steering motor, three
// sensors and a sound player.
type Rig struct {
	left     Motor
	right    Motor
	steering Steering
	color    Sensor
	infrared Sensor
	touch    Sensor
	player   Player
}

// NewRig opens every device in cfg through devs and prepares it for the
// control loop: drive motors in run-direct, color sensor in RGB-RAW, infrared
// sensor in IR-PROX and touch sensor in TOUCH.
func NewRig(ctx context.Context, cfg *Config, devs Devices) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Rig{player: NewCommandPlayer(cfg.Sound)}
	if err := r.open(ctx, cfg, devs); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Rig) open(ctx context.Context, cfg *Config, devs Devices) error {
	var err error

	// Drive motors
	if r.left, err = devs.Motor(cfg.Left); err != nil {
		return fmt.Errorf("left motor: %w", err)
	}
	if r.right, err = devs.Motor(cfg.Right); err != nil {
		return fmt.Errorf("right motor: %w", err)
	}
	for _, m := range []Motor{r.left, r.right} {
		if err := m.RunDirect(); err != nil {
			return fmt.Errorf("motor %s: %w", m.Info().Address, err)
		}
	}

	// Steering
	steering, err := openSteering(ctx, devs, cfg.Steering)
	if err != nil {
		return fmt.Errorf("turn motor: %w", err)
	}
	r.steering = steering

	// Sensors
	if r.color, err = devs.Sensor(cfg.Color); err != nil {
		return fmt.Errorf("color sensor: %w", err)
	}
	if err := r.color.SetMode(ModeRGBRaw); err != nil {
		return fmt.Errorf("color sensor: %w", err)
	}
	if r.infrared, err = devs.Sensor(cfg.Infrared); err != nil {
		return fmt.Errorf("infrared sensor: %w", err)
	}
	if err := r.infrared.SetMode(ModeIRProx); err != nil {
		return fmt.Errorf("infrared sensor: %w", err)
	}
	if r.touch, err = devs.Sensor(cfg.Touch); err != nil {
		return fmt.Errorf("touch sensor: %w", err)
	}
	if err := r.touch.SetMode(ModeTouch); err != nil {
		return fmt.Errorf("touch sensor: %w", err)
	}

	return nil
}

func openSteering(ctx context.Context, devs Devices, cfg SteeringConfig) (Steering, error) {
	if cfg.Kind == SteeringServo {
		s, err := NewServoSteering(ctx, cfg.Port, cfg.Calibration)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	m, err := devs.Motor(cfg.Motor)
	if err != nil {
		return nil, err
	}
	s, err := NewTachoSteering(m, cfg.Speed)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close stops the motors and releases the steering backend.
func (r *Rig) Close() error {
	var errs []error
	for _, m := range []Motor{r.left, r.right} {
		if m == nil {
			continue
		}
		if err := m.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.steering != nil {
		if err := r.steering.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sample reads every sensor and the turn position.
func (r *Rig) Sample(ctx context.Context) (behavior.World, error) {
	color, err := ReadRGB(r.color)
	if err != nil {
		return behavior.World{}, fmt.Errorf("read color: %w", err)
	}
	distance, err := r.infrared.Value(0)
	if err != nil {
		return behavior.World{}, fmt.Errorf("read distance: %w", err)
	}
	touched, err := ReadPressed(r.touch)
	if err != nil {
		return behavior.World{}, fmt.Errorf("read touch: %w", err)
	}
	turn, err := r.steering.Position(ctx)
	if err != nil {
		return behavior.World{}, fmt.Errorf("read turn position: %w", err)
	}

	return behavior.World{
		Color:    color,
		Distance: distance,
		Touched:  touched,
		Turn:     turn,
	}, nil
}

// Apply writes the drive duty cycles and the turn position, then plays the
// sound cue if any.
func (r *Rig) Apply(ctx context.Context, d behavior.Device, turn int) error {
	if err := r.left.SetDutyCycle(d.LeftSpeed); err != nil {
		return fmt.Errorf("left motor: %w", err)
	}
	if err := r.right.SetDutyCycle(d.RightSpeed); err != nil {
		return fmt.Errorf("right motor: %w", err)
	}
	if err := r.steering.SetPosition(ctx, turn+d.TurnDelta); err != nil {
		return fmt.Errorf("turn motor: %w", err)
	}
	if d.Sound != "" {
		if err := r.player.Play(ctx, d.Sound); err != nil {
			return fmt.Errorf("sound: %w", err)
		}
	}
	return nil
}

// Stop sets both drive duty cycles to zero.
func (r *Rig) Stop(ctx context.Context) error {
	return errors.Join(
		r.left.SetDutyCycle(0),
		r.right.SetDutyCycle(0),
	)
}
