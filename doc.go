// Package seeker drives an ev3dev robot until it finds a yellow patch.
//
// The robot wanders forward, backs off and turns away from obstacles seen by
// its infrared or touch sensor, and barks once the color sensor reports the
// target color.
//
// # Installation
//
//	go install github.com/gwillem/seeker/cmd/seeker@latest
//
// # Usage
//
// First, run setup on the brick to identify the motors and sensors:
//
//	seeker setup
//
// Then start searching, either with plain logging or a live dashboard:
//
//	seeker run
//	seeker watch
//
// Both commands accept --sim to drive a simulated robot instead.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/seeker: CLI with setup, run and watch commands
//   - cmd/ev3-info: Lists the ev3dev devices and their readings
//   - pkg/behavior: The search and avoid state machine
//   - pkg/control: Sense, step and act loop
//   - pkg/robot: ev3dev devices, steering, sound, configuration and simulator
package seeker
