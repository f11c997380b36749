// Package robot provides the hardware side of the seeker: ev3dev motors and
// sensors, an optional Feetech steering servo, sound playback and a
// simulator.
package robot

// MotorName identifies a motor on the robot.
type MotorName string

// Motor names for the seeker chassis.
const (
	LeftMotor  MotorName = "left"
	RightMotor MotorName = "right"
	TurnMotor  MotorName = "turn"
)

// AllMotors returns all motor names in order.
func AllMotors() []MotorName {
	return []MotorName{
		LeftMotor,
		RightMotor,
		TurnMotor,
	}
}

// Tacho motor commands.
const (
	CommandRunDirect   = "run-direct"
	CommandRunToAbsPos = "run-to-abs-pos"
	CommandStop        = "stop"
)
