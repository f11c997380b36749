package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gwillem/seeker/pkg/behavior"
)

// Config holds the robot configuration
type Config struct {
	Left     PortConfig     `json:"left"`
	Right    PortConfig     `json:"right"`
	Color    PortConfig     `json:"color"`
	Infrared PortConfig     `json:"infrared"`
	Touch    PortConfig     `json:"touch"`
	Steering SteeringConfig `json:"steering"`
	Sound    SoundConfig    `json:"sound"`

	Behavior behavior.Config `json:"behavior"`
	TickMs   int             `json:"tick_ms"`
}

// PortConfig locates one ev3dev device. Either field may be empty; an empty
// Address matches the first device with the given driver.
type PortConfig struct {
	Address string `json:"address,omitempty"`
	Driver  string `json:"driver,omitempty"`
}

func (p PortConfig) String() string {
	switch {
	case p.Address != "" && p.Driver != "":
		return p.Driver + "@" + p.Address
	case p.Address != "":
		return p.Address
	default:
		return p.Driver
	}
}

// IsZero returns true if the port matches nothing in particular
func (p PortConfig) IsZero() bool {
	return p.Address == "" && p.Driver == ""
}

// SteeringConfig selects the turn motor backend
type SteeringConfig struct {
	Kind string `json:"kind"` // ev3 or feetech

	// ev3 tacho motor
	Motor PortConfig `json:"motor"`
	Speed int        `json:"speed"`

	// feetech servo
	Port        string           `json:"port,omitempty"`
	Calibration ServoCalibration `json:"calibration"`
}

// SoundConfig describes how cues are played
type SoundConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Cues    map[string]string `json:"cues"`
}

// DefaultConfig returns the wiring of the reference robot: left motor on B,
// right on C, turn motor on A, touch on 2, color on 3 and infrared on 4.
func DefaultConfig() *Config {
	return &Config{
		Left:     PortConfig{Address: "ev3-ports:outB"},
		Right:    PortConfig{Address: "ev3-ports:outC"},
		Touch:    PortConfig{Address: "ev3-ports:in2", Driver: DriverTouch},
		Color:    PortConfig{Address: "ev3-ports:in3", Driver: DriverColor},
		Infrared: PortConfig{Address: "ev3-ports:in4", Driver: DriverInfrared},
		Steering: SteeringConfig{
			Kind:        SteeringTacho,
			Motor:       PortConfig{Address: "ev3-ports:outA"},
			Speed:       200,
			Calibration: DefaultServoCalibration(),
		},
		Sound: SoundConfig{
			Command: "aplay",
			Args:    []string{"-q"},
			Cues: map[string]string{
				behavior.CueTargetFound: "bark.wav",
			},
		},
		Behavior: behavior.DefaultConfig(),
		TickMs:   250,
	}
}

// Tick returns the control loop period
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// Validate checks the configuration for values the robot cannot run with
func (c *Config) Validate() error {
	if c.TickMs <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", c.TickMs)
	}
	if err := c.Behavior.Validate(); err != nil {
		return fmt.Errorf("behavior: %w", err)
	}

	ports := []struct {
		name string
		port PortConfig
	}{
		{string(LeftMotor), c.Left},
		{string(RightMotor), c.Right},
		{string(ColorSensor), c.Color},
		{string(InfraredSensor), c.Infrared},
		{string(TouchSensor), c.Touch},
	}
	for _, p := range ports {
		if p.port.IsZero() {
			return fmt.Errorf("%s: port not configured", p.name)
		}
	}

	switch c.Steering.Kind {
	case SteeringTacho:
		if c.Steering.Motor.IsZero() {
			return errors.New("steering: motor port not configured")
		}
	case SteeringServo:
		if c.Steering.Port == "" {
			return errors.New("steering: serial port not configured")
		}
		if c.Steering.Calibration.RangeMax <= c.Steering.Calibration.RangeMin {
			return errors.New("steering: empty calibration range")
		}
	default:
		return fmt.Errorf("steering: unknown kind %q", c.Steering.Kind)
	}

	if _, ok := c.Sound.Cues[c.Behavior.Cue]; !ok {
		return fmt.Errorf("sound: no file for cue %q", c.Behavior.Cue)
	}
	return nil
}

// LoadConfigFrom loads configuration from a specific file. Fields missing
// from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExistsAt returns true if path exists
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
