package robot

// SensorName identifies a sensor on the robot.
type SensorName string

// Sensor names for the seeker chassis.
const (
	ColorSensor    SensorName = "color"
	InfraredSensor SensorName = "infrared"
	TouchSensor    SensorName = "touch"
)

// ev3dev driver names and modes used by the seeker.
const (
	DriverColor    = "lego-ev3-color"
	DriverInfrared = "lego-ev3-ir"
	DriverTouch    = "lego-ev3-touch"

	ModeRGBRaw = "RGB-RAW"
	ModeIRProx = "IR-PROX"
	ModeTouch  = "TOUCH"
)
