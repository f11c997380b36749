package robot

import (
	"fmt"
	"strconv"

	"github.com/ev3go/ev3dev"
)

// EV3 opens devices through the ev3dev sysfs drivers of the brick.
type EV3 struct{}

func (EV3) Motor(port PortConfig) (Motor, error) {
	m, err := ev3dev.TachoMotorFor(port.Address, port.Driver)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", ClassTachoMotor, port, ErrDeviceNotFound, err)
	}
	return &TachoMotor{
		m: m,
		info: DeviceInfo{
			Class:   ClassTachoMotor,
			Name:    m.String(),
			Address: port.Address,
			Driver:  m.Driver(),
		},
	}, nil
}

func (EV3) Sensor(port PortConfig) (Sensor, error) {
	s, err := ev3dev.SensorFor(port.Address, port.Driver)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", ClassLegoSensor, port, ErrDeviceNotFound, err)
	}
	return &LegoSensor{
		s: s,
		info: DeviceInfo{
			Class:   ClassLegoSensor,
			Name:    s.String(),
			Address: port.Address,
			Driver:  s.Driver(),
		},
	}, nil
}

// TachoMotor is an ev3dev tacho motor.
type TachoMotor struct {
	m    *ev3dev.TachoMotor
	info DeviceInfo
}

func (t *TachoMotor) Info() DeviceInfo {
	return t.info
}

// RunDirect puts the motor in run-direct mode, where duty cycle changes take
// effect immediately.
func (t *TachoMotor) RunDirect() error {
	return t.m.Command(CommandRunDirect).Err()
}

// SetDutyCycle sets the duty cycle setpoint, clamped to [-100, 100].
func (t *TachoMotor) SetDutyCycle(dc int) error {
	return t.m.SetDutyCycleSetpoint(clamp(dc, -100, 100)).Err()
}

// SetSpeed sets the speed setpoint in tacho counts per second.
func (t *TachoMotor) SetSpeed(sp int) error {
	return t.m.SetSpeedSetpoint(sp).Err()
}

// Position returns the current position in tacho counts.
func (t *TachoMotor) Position() (int, error) {
	return t.m.Position()
}

// RunToPosition drives the motor to an absolute position.
func (t *TachoMotor) RunToPosition(pos int) error {
	return t.m.SetPositionSetpoint(pos).Command(CommandRunToAbsPos).Err()
}

func (t *TachoMotor) Stop() error {
	return t.m.Command(CommandStop).Err()
}

// LegoSensor is an ev3dev lego-sensor.
type LegoSensor struct {
	s    *ev3dev.Sensor
	info DeviceInfo
}

func (l *LegoSensor) Info() DeviceInfo {
	return l.info
}

func (l *LegoSensor) Mode() (string, error) {
	return l.s.Mode()
}

func (l *LegoSensor) SetMode(mode string) error {
	return l.s.SetMode(mode).Err()
}

// Value returns value<n> of the active mode.
func (l *LegoSensor) Value(n int) (int, error) {
	raw, err := l.s.Value(n)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse value%d: %w", n, err)
	}
	return v, nil
}
