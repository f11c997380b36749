// Package control runs the seeker control loop: it samples the world, feeds
// it to the behavior state machine and applies the resulting device command,
// once per tick, until the target is found.
package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gwillem/seeker/pkg/behavior"
)

// DefaultTick is the period of the reference robot's control loop.
const DefaultTick = 250 * time.Millisecond

// Sampler produces a World snapshot from the sensors.
type Sampler interface {
	Sample(ctx context.Context) (behavior.World, error)
}

// Actuator applies a Device command. turn is the absolute turn motor position
// sampled this tick; the actuator writes turn+d.TurnDelta. If d.Sound is set,
// Apply blocks until the cue has finished playing.
type Actuator interface {
	Apply(ctx context.Context, d behavior.Device, turn int) error
}

// Stopper is implemented by actuators that can halt the drive motors. The
// controller calls it whenever the loop ends.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Status is a snapshot of one completed tick.
type Status struct {
	State     behavior.State
	World     behavior.World
	Device    behavior.Device
	Timestamp time.Time
	Err       error
}

// Config holds configuration for the controller.
type Config struct {
	Sampler  Sampler
	Actuator Actuator
	Behavior behavior.Config
	Tick     time.Duration
	Logger   logrus.FieldLogger
}

// Controller drives the behavior state machine.
type Controller struct {
	sampler  Sampler
	actuator Actuator
	behavior behavior.Config
	tick     time.Duration
	log      logrus.FieldLogger

	mu       sync.Mutex
	running  bool
	statusCh chan Status
}

// NewController creates a controller. A zero Tick means DefaultTick.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Sampler == nil {
		return nil, errors.New("sampler is required")
	}
	if cfg.Actuator == nil {
		return nil, errors.New("actuator is required")
	}
	if err := cfg.Behavior.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tick < 0 {
		return nil, errors.New("tick must not be negative")
	}
	if cfg.Tick == 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Controller{
		sampler:  cfg.Sampler,
		actuator: cfg.Actuator,
		behavior: cfg.Behavior,
		tick:     cfg.Tick,
		log:      cfg.Logger,
		statusCh: make(chan Status, 1),
	}, nil
}

// Statuses returns a channel that receives the latest tick status. Stale
// values are dropped if the reader falls behind.
func (c *Controller) Statuses() <-chan Status {
	return c.statusCh
}

// Tick returns the control loop period.
func (c *Controller) Tick() time.Duration {
	return c.tick
}

// Run executes the control loop. It returns nil once the target has been
// found and the cue has played, the first sensor or actuator error, or the
// context error if ctx is cancelled first.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("already running")
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.log.WithField("tick", c.tick).Info("Control loop started")

	var state behavior.State
	for tick := uint64(0); ; tick++ {
		next, err := c.step(ctx, tick, state)
		if err != nil {
			c.log.WithError(err).Error("Control loop aborted")
			c.sendStatus(Status{State: state, Timestamp: time.Now(), Err: err})
			c.halt()
			return err
		}
		state = next

		if state.Terminal() {
			c.log.WithField("tick", tick).Info("Target found")
			c.halt()
			return nil
		}

		if err := c.wait(ctx); err != nil {
			c.log.Info("Control loop cancelled")
			c.halt()
			return err
		}
	}
}

func (c *Controller) step(ctx context.Context, tick uint64, state behavior.State) (behavior.State, error) {
	world, err := c.sampler.Sample(ctx)
	if err != nil {
		return state, &SensorReadError{Tick: tick, Err: err}
	}
	world.Tick = tick

	next, dev := c.behavior.Step(state, world)

	log := c.log.WithFields(logrus.Fields{
		"tick":     tick,
		"color":    world.Color.String(),
		"distance": world.Distance,
		"touched":  world.Touched,
		"turn":     world.Turn,
	})
	if next.Kind != state.Kind {
		log.WithFields(logrus.Fields{
			"from": state.String(),
			"to":   next.String(),
		}).Info("State transition")
	} else {
		log.WithField("state", next.String()).Debug("Tick")
	}

	if err := c.actuator.Apply(ctx, dev, world.Turn); err != nil {
		return state, &ActuatorWriteError{Tick: tick, Err: err}
	}

	c.sendStatus(Status{
		State:     next,
		World:     world,
		Device:    dev,
		Timestamp: time.Now(),
	})

	return next, nil
}

func (c *Controller) wait(ctx context.Context) error {
	t := time.NewTimer(c.tick)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// halt stops the wheels. The run context may already be cancelled, so a
// fresh one is used.
func (c *Controller) halt() {
	s, ok := c.actuator.(Stopper)
	if !ok {
		return
	}
	if err := s.Stop(context.Background()); err != nil {
		c.log.WithError(err).Warn("Could not stop motors")
	}
}

func (c *Controller) sendStatus(s Status) {
	select {
	case c.statusCh <- s:
	default:
		// Drop old status if channel full, replace with new
		select {
		case <-c.statusCh:
		default:
		}
		c.statusCh <- s
	}
}
