package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/gwillem/seeker/pkg/control"
	"github.com/gwillem/seeker/pkg/robot"
)

type RunCommand struct {
	Sim bool `long:"sim" description:"Drive the simulator instead of the ev3dev hardware"`
}

// robotIO is the hardware or the simulator, whichever the loop drives.
type robotIO interface {
	control.Sampler
	control.Actuator
	io.Closer
}

// newController loads the configuration and wires the controller to either
// the rig or the simulator.
func newController(ctx context.Context, sim bool, logger log.FieldLogger) (*control.Controller, robotIO, error) {
	cfg := robot.DefaultConfig()
	if robot.ConfigExistsAt(opts.Config) {
		loaded, err := robot.LoadConfigFrom(opts.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		logger.Infof("Loaded configuration from %s", opts.Config)
	} else if !sim {
		return nil, nil, fmt.Errorf("no configuration at %s, run 'seeker setup' first", opts.Config)
	}

	var rio robotIO
	if sim {
		simCfg := robot.DefaultSimConfig()
		simCfg.Cues = []string{cfg.Behavior.Cue}
		rio = robot.NewSim(simCfg)
		logger.Info("Created simulator.")
	} else {
		rig, err := robot.NewRig(ctx, cfg, robot.EV3{})
		if err != nil {
			return nil, nil, fmt.Errorf("open robot: %w", err)
		}
		rio = rig
		logger.Infof("Opened robot with %s steering.", cfg.Steering.Kind)
	}

	ctrl, err := control.NewController(control.Config{
		Sampler:  rio,
		Actuator: rio,
		Behavior: cfg.Behavior,
		Tick:     cfg.Tick(),
		Logger:   logger.WithField("system", "control"),
	})
	if err != nil {
		rio.Close()
		return nil, nil, fmt.Errorf("create controller: %w", err)
	}

	return ctrl, rio, nil
}

func (c *RunCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.WithField("system", "seeker")

	ctrl, rio, err := newController(ctx, c.Sim, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := rio.Close(); err != nil {
			logger.Errorf("Could not properly close robot: %v", err)
		} else {
			logger.Info("Closed robot.")
		}
	}()

	// blocks until the target is found, a device fails or we are interrupted
	if err := ctrl.Run(ctx); err != nil {
		return fmt.Errorf("run control loop: %w", err)
	}

	logger.Info("Target reached.")
	return nil
}
