package main

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gwillem/seeker/pkg/robot"
)

type wiggleMotor struct {
	duties  []int
	stopped bool
	dutyErr error
	stopErr error
}

func (m *wiggleMotor) Info() robot.DeviceInfo { return robot.DeviceInfo{Address: "ev3-ports:outA"} }
func (m *wiggleMotor) RunDirect() error       { return nil }
func (m *wiggleMotor) SetSpeed(int) error     { return nil }
func (m *wiggleMotor) Position() (int, error) { return 0, nil }
func (m *wiggleMotor) RunToPosition(int) error {
	return nil
}

func (m *wiggleMotor) SetDutyCycle(dc int) error {
	m.duties = append(m.duties, dc)
	if dc != 0 {
		return m.dutyErr
	}
	return nil
}

func (m *wiggleMotor) Stop() error {
	m.stopped = true
	return m.stopErr
}

func TestWiggle(t *testing.T) {
	wigglePulse = 0

	m := &wiggleMotor{}
	if err := wiggle(m); err != nil {
		t.Fatalf("wiggle() = %v", err)
	}
	if want := []int{30, -30, 0}; !reflect.DeepEqual(m.duties, want) {
		t.Errorf("duty cycles = %v, want %v", m.duties, want)
	}
	if !m.stopped {
		t.Error("motor should be stopped after the wiggle")
	}
}

func TestWiggle_ReportsErrors(t *testing.T) {
	wigglePulse = 0

	m := &wiggleMotor{dutyErr: errors.New("no such device")}
	if err := wiggle(m); !errors.Is(err, m.dutyErr) {
		t.Errorf("wiggle() = %v, want %v", err, m.dutyErr)
	}
	if !m.stopped {
		t.Error("motor should be stopped after a failed pulse")
	}

	m = &wiggleMotor{stopErr: errors.New("busy")}
	if err := wiggle(m); !errors.Is(err, m.stopErr) {
		t.Errorf("wiggle() = %v, want %v", err, m.stopErr)
	}
}
