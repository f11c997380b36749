package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Config string `short:"c" long:"config" default:"seeker.json" description:"Path to the robot configuration file"`
	Debug  bool   `long:"debug" description:"Log every tick"`

	Setup SetupCommand `command:"setup" description:"Detect motors and sensors and write the configuration"`
	Run   RunCommand   `command:"run" description:"Search for the target and log progress"`
	Watch WatchCommand `command:"watch" description:"Search for the target with a live dashboard"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)

func main() {
	parser.LongDescription = "seeker - drives an ev3dev robot to a yellow target while avoiding obstacles"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLogging(opts.Debug)
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				fmt.Println(flagsErr.Message)
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, flagsErr.Message)
			os.Exit(1)
		}
		log.WithError(err).Error("seeker failed")
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debug("Setting debug mode.")
	}
}
