package control

import "fmt"

// SensorReadError reports a failed World sample. It is fatal to the run.
type SensorReadError struct {
	Tick uint64
	Err  error
}

func (e *SensorReadError) Error() string {
	return fmt.Sprintf("tick %d: sensor read: %v", e.Tick, e.Err)
}

func (e *SensorReadError) Unwrap() error {
	return e.Err
}

// ActuatorWriteError reports a failed motor or sound command. It is fatal to
// the run.
type ActuatorWriteError struct {
	Tick uint64
	Err  error
}

func (e *ActuatorWriteError) Error() string {
	return fmt.Sprintf("tick %d: actuator write: %v", e.Tick, e.Err)
}

func (e *ActuatorWriteError) Unwrap() error {
	return e.Err
}
