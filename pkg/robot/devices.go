package robot

import (
	"errors"
	"fmt"

	"github.com/gwillem/seeker/pkg/behavior"
)

// Device classes exposed by ev3dev.
const (
	ClassTachoMotor = "tacho-motor"
	ClassLegoSensor = "lego-sensor"
)

// Port addresses of the EV3 brick.
var (
	OutputPorts = []string{"ev3-ports:outA", "ev3-ports:outB", "ev3-ports:outC", "ev3-ports:outD"}
	InputPorts  = []string{"ev3-ports:in1", "ev3-ports:in2", "ev3-ports:in3", "ev3-ports:in4"}
)

// ErrDeviceNotFound is returned when no device matches a port configuration.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceInfo describes one ev3dev device.
type DeviceInfo struct {
	Class   string
	Name    string // e.g. motor0, sensor2
	Address string // e.g. ev3-ports:outB
	Driver  string // e.g. lego-ev3-l-motor
}

// Motor is a tacho motor.
type Motor interface {
	Info() DeviceInfo
	RunDirect() error
	SetDutyCycle(dc int) error
	SetSpeed(sp int) error
	Position() (int, error)
	RunToPosition(pos int) error
	Stop() error
}

// Sensor is a lego sensor.
type Sensor interface {
	Info() DeviceInfo
	Mode() (string, error)
	SetMode(mode string) error
	Value(n int) (int, error)
}

// Devices opens motors and sensors by port. An empty Address matches the
// first device with the configured driver.
type Devices interface {
	Motor(port PortConfig) (Motor, error)
	Sensor(port PortConfig) (Sensor, error)
}

// Discover probes every port of the brick and lists what is plugged in,
// motors first.
func Discover(devs Devices) ([]DeviceInfo, error) {
	var devices []DeviceInfo
	for _, addr := range OutputPorts {
		m, err := devs.Motor(PortConfig{Address: addr})
		if errors.Is(err, ErrDeviceNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", addr, err)
		}
		devices = append(devices, m.Info())
	}
	for _, addr := range InputPorts {
		s, err := devs.Sensor(PortConfig{Address: addr})
		if errors.Is(err, ErrDeviceNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", addr, err)
		}
		devices = append(devices, s.Info())
	}
	return devices, nil
}

// ReadRGB reads a raw color triple. The sensor must be in RGB-RAW mode.
func ReadRGB(s Sensor) (behavior.Color, error) {
	var v [3]int
	for i := range v {
		x, err := s.Value(i)
		if err != nil {
			return behavior.Color{}, err
		}
		v[i] = x
	}
	return behavior.Color{R: v[0], G: v[1], B: v[2]}, nil
}

// ReadPressed reports whether a touch sensor is pressed.
func ReadPressed(s Sensor) (bool, error) {
	v, err := s.Value(0)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
