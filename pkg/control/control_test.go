package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/gwillem/seeker/pkg/behavior"
)

var (
	yellow = behavior.Color{R: 0, G: 1020, B: 1020}
	grey   = behavior.Color{R: 300, G: 300, B: 300}
)

// fakeRobot replays scripted readings and records every command. The turn
// position it reports follows the commands it receives.
type fakeRobot struct {
	worlds []behavior.World

	sampleErr   error
	sampleErrAt int
	applyErr    error
	applyErrAt  int

	samples int
	devices []behavior.Device
	turns   []int
	pos     int
	stops   int
}

func (f *fakeRobot) Sample(ctx context.Context) (behavior.World, error) {
	i := f.samples
	f.samples++
	if f.sampleErr != nil && i == f.sampleErrAt {
		return behavior.World{}, f.sampleErr
	}
	w := f.worlds[len(f.worlds)-1]
	if i < len(f.worlds) {
		w = f.worlds[i]
	}
	w.Turn = f.pos
	return w, nil
}

func (f *fakeRobot) Apply(ctx context.Context, d behavior.Device, turn int) error {
	if f.applyErr != nil && len(f.devices) == f.applyErrAt {
		return f.applyErr
	}
	f.devices = append(f.devices, d)
	f.turns = append(f.turns, turn+d.TurnDelta)
	f.pos = turn + d.TurnDelta
	return nil
}

func (f *fakeRobot) Stop(ctx context.Context) error {
	f.stops++
	return nil
}

func newTestController(t *testing.T, r *fakeRobot) (*Controller, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	ctrl, err := NewController(Config{
		Sampler:  r,
		Actuator: r,
		Behavior: behavior.DefaultConfig(),
		Tick:     time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl, hook
}

func TestRun_FindsTarget(t *testing.T) {
	r := &fakeRobot{worlds: []behavior.World{
		{Color: grey, Distance: 100},
		{Color: grey, Distance: 100},
		{Color: grey, Distance: 100},
		{Color: yellow, Distance: 100},
	}}
	ctrl, hook := newTestController(t, r)

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	if r.samples != 4 {
		t.Errorf("samples = %d, want 4", r.samples)
	}
	if len(r.devices) != 4 {
		t.Fatalf("applied %d devices, want 4", len(r.devices))
	}
	for i, d := range r.devices[:3] {
		if d.LeftSpeed != -50 || d.RightSpeed != -50 {
			t.Errorf("device %d = %+v, want forward", i, d)
		}
	}
	last := r.devices[3]
	if last != (behavior.Device{Sound: behavior.CueTargetFound}) {
		t.Errorf("final device = %+v, want stopped with cue", last)
	}
	if r.stops != 1 {
		t.Errorf("stops = %d, want 1", r.stops)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "Target found" {
		t.Errorf("last log entry = %v, want Target found", entry)
	}
}

func TestRun_StatusReflectsNewState(t *testing.T) {
	r := &fakeRobot{worlds: []behavior.World{
		{Color: yellow, Distance: 100},
	}}
	ctrl, _ := newTestController(t, r)

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	// The first tick only leaves Start; the second finds the target.
	s := <-ctrl.Statuses()
	if s.State.Kind != behavior.Found {
		t.Errorf("status state = %v, want found", s.State)
	}
	if s.World.Tick != 1 {
		t.Errorf("status tick = %d, want 1", s.World.Tick)
	}
	if s.Device.Sound != behavior.CueTargetFound {
		t.Errorf("status device = %+v, want cue", s.Device)
	}
}

func TestRun_AvoidanceRestoresTurn(t *testing.T) {
	worlds := []behavior.World{{}, {Color: grey, Distance: 10}}
	for i := 0; i < 21; i++ {
		worlds = append(worlds, behavior.World{Color: grey, Distance: 100})
	}
	worlds = append(worlds, behavior.World{Color: yellow, Distance: 100})

	r := &fakeRobot{worlds: worlds}
	ctrl, hook := newTestController(t, r)

	if err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	// tick 1 enters avoiding-back{0}; ticks 1..10 back, 11 turn, 12..21 advance.
	if got := r.turns[11]; got != 10 {
		t.Errorf("turn after pivot = %d, want 10", got)
	}
	if got := r.turns[21]; got != 0 {
		t.Errorf("turn after straightening = %d, want 0", got)
	}
	if r.devices[11] != (behavior.Device{TurnDelta: 10}) {
		t.Errorf("pivot device = %+v", r.devices[11])
	}
	if r.devices[21] != (behavior.Device{TurnDelta: -10}) {
		t.Errorf("straighten device = %+v", r.devices[21])
	}

	var transitions []string
	for _, e := range hook.AllEntries() {
		if e.Message == "State transition" {
			transitions = append(transitions, e.Data["to"].(string))
		}
	}
	expected := []string{"searching", "avoiding-back{0}", "avoiding-turn{0}", "avoiding-advance{0}", "searching", "found"}
	if len(transitions) != len(expected) {
		t.Fatalf("transitions = %v, want %v", transitions, expected)
	}
	for i := range expected {
		if transitions[i] != expected[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], expected[i])
		}
	}
}

func TestRun_SensorFailureIsFatal(t *testing.T) {
	cause := errors.New("read distance: no such device")
	r := &fakeRobot{
		worlds:      []behavior.World{{Color: grey, Distance: 100}},
		sampleErr:   cause,
		sampleErrAt: 2,
	}
	ctrl, _ := newTestController(t, r)

	err := ctrl.Run(context.Background())

	var sensorErr *SensorReadError
	if !errors.As(err, &sensorErr) {
		t.Fatalf("Run() = %v, want SensorReadError", err)
	}
	if sensorErr.Tick != 2 {
		t.Errorf("Tick = %d, want 2", sensorErr.Tick)
	}
	if !errors.Is(err, cause) {
		t.Error("error should wrap the sensor cause")
	}
	if len(r.devices) != 2 {
		t.Errorf("applied %d devices, want 2", len(r.devices))
	}
	if r.stops != 1 {
		t.Errorf("stops = %d, want 1", r.stops)
	}

	s := <-ctrl.Statuses()
	if s.Err == nil {
		t.Error("final status should carry the error")
	}
}

func TestRun_ActuatorFailureIsFatal(t *testing.T) {
	cause := errors.New("write duty_cycle_sp: permission denied")
	r := &fakeRobot{
		worlds:     []behavior.World{{Color: grey, Distance: 100}},
		applyErr:   cause,
		applyErrAt: 0,
	}
	ctrl, _ := newTestController(t, r)

	err := ctrl.Run(context.Background())

	var actErr *ActuatorWriteError
	if !errors.As(err, &actErr) {
		t.Fatalf("Run() = %v, want ActuatorWriteError", err)
	}
	if actErr.Tick != 0 {
		t.Errorf("Tick = %d, want 0", actErr.Tick)
	}
	if r.samples != 1 {
		t.Errorf("samples = %d, want 1", r.samples)
	}
}

func TestRun_Cancel(t *testing.T) {
	r := &fakeRobot{worlds: []behavior.World{{Color: grey, Distance: 100}}}
	ctrl, _ := newTestController(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	<-ctrl.Statuses()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewController_Validation(t *testing.T) {
	r := &fakeRobot{worlds: []behavior.World{{}}}
	bad := behavior.DefaultConfig()
	bad.BackTicks = 0

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no sampler", Config{Actuator: r, Behavior: behavior.DefaultConfig()}},
		{"no actuator", Config{Sampler: r, Behavior: behavior.DefaultConfig()}},
		{"bad behavior", Config{Sampler: r, Actuator: r, Behavior: bad}},
		{"negative tick", Config{Sampler: r, Actuator: r, Behavior: behavior.DefaultConfig(), Tick: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewController(tt.cfg); err == nil {
				t.Error("NewController() = nil error, want error")
			}
		})
	}

	ctrl, err := NewController(Config{Sampler: r, Actuator: r, Behavior: behavior.DefaultConfig()})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if ctrl.Tick() != DefaultTick {
		t.Errorf("Tick() = %v, want %v", ctrl.Tick(), DefaultTick)
	}
}
