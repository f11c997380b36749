package robot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Tick() != 250*time.Millisecond {
		t.Errorf("Tick() = %v, want 250ms", cfg.Tick())
	}
	if cfg.Left.Address != "ev3-ports:outB" || cfg.Right.Address != "ev3-ports:outC" {
		t.Errorf("drive ports = %s/%s, want outB/outC", cfg.Left, cfg.Right)
	}
	if cfg.Steering.Motor.Address != "ev3-ports:outA" {
		t.Errorf("turn port = %s, want outA", cfg.Steering.Motor)
	}
}

func TestLoadConfigFrom_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeker.json")
	data := `{"tick_ms": 100, "left": {"address": "ev3-ports:outD"}, "behavior": {"forward_speed": -70}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}

	if cfg.TickMs != 100 {
		t.Errorf("TickMs = %d, want 100", cfg.TickMs)
	}
	if cfg.Left.Address != "ev3-ports:outD" {
		t.Errorf("Left = %s, want ev3-ports:outD", cfg.Left)
	}
	if cfg.Behavior.ForwardSpeed != -70 {
		t.Errorf("ForwardSpeed = %d, want -70", cfg.Behavior.ForwardSpeed)
	}
	// Untouched fields fall back to defaults.
	if cfg.Behavior.BackTicks != 10 {
		t.Errorf("BackTicks = %d, want 10", cfg.Behavior.BackTicks)
	}
	if cfg.Right.Address != "ev3-ports:outC" {
		t.Errorf("Right = %s, want ev3-ports:outC", cfg.Right)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeker.json")

	cfg := DefaultConfig()
	cfg.Steering.Kind = SteeringServo
	cfg.Steering.Port = "/dev/ttyACM0"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if !ConfigExistsAt(path) {
		t.Fatal("ConfigExistsAt() = false after SaveTo")
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if loaded.Steering.Kind != SteeringServo || loaded.Steering.Port != "/dev/ttyACM0" {
		t.Errorf("Steering = %+v", loaded.Steering)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"tick", func(c *Config) { c.TickMs = 0 }},
		{"behavior", func(c *Config) { c.Behavior.AdvanceTicks = 0 }},
		{"left port", func(c *Config) { c.Left = PortConfig{} }},
		{"touch port", func(c *Config) { c.Touch = PortConfig{} }},
		{"steering kind", func(c *Config) { c.Steering.Kind = "hydraulic" }},
		{"servo port", func(c *Config) { c.Steering.Kind = SteeringServo }},
		{"servo range", func(c *Config) {
			c.Steering.Kind = SteeringServo
			c.Steering.Port = "/dev/ttyUSB0"
			c.Steering.Calibration.RangeMax = c.Steering.Calibration.RangeMin
		}},
		{"cue file", func(c *Config) { c.Behavior.Cue = "fanfare" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfig_Validate_FirstMissingPort(t *testing.T) {
	// The same port is reported on every run when several are missing.
	for i := 0; i < 20; i++ {
		cfg := DefaultConfig()
		cfg.Right = PortConfig{}
		cfg.Color = PortConfig{}
		cfg.Touch = PortConfig{}

		err := cfg.Validate()
		if err == nil || err.Error() != "right: port not configured" {
			t.Fatalf("Validate() = %v, want right: port not configured", err)
		}
	}
}

func TestPortConfig_String(t *testing.T) {
	tests := []struct {
		p        PortConfig
		expected string
	}{
		{PortConfig{Address: "ev3-ports:in3", Driver: DriverColor}, "lego-ev3-color@ev3-ports:in3"},
		{PortConfig{Address: "ev3-ports:outA"}, "ev3-ports:outA"},
		{PortConfig{Driver: DriverTouch}, "lego-ev3-touch"},
	}

	for _, tt := range tests {
		if got := tt.p.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}
