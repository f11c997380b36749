package robot

import "math"

// ServoCalibration maps a Feetech servo's raw position range onto steering
// degrees centred on zero.
type ServoCalibration struct {
	ID       int `json:"id"`
	RangeMin int `json:"range_min"`
	RangeMax int `json:"range_max"`
	Degrees  int `json:"degrees"` // sweep covered by [RangeMin, RangeMax]
}

// DefaultServoCalibration covers the full turn of an STS3215.
func DefaultServoCalibration() ServoCalibration {
	return ServoCalibration{
		ID:       1,
		RangeMin: 0,
		RangeMax: 4095,
		Degrees:  360,
	}
}

func (c ServoCalibration) center() float64 {
	return float64(c.RangeMin+c.RangeMax) / 2
}

func (c ServoCalibration) stepsPerDegree() float64 {
	if c.Degrees == 0 {
		return 0
	}
	return float64(c.RangeMax-c.RangeMin) / float64(c.Degrees)
}

// Normalize converts a raw servo position to degrees from the centre.
func (c ServoCalibration) Normalize(raw int) int {
	spd := c.stepsPerDegree()
	if spd == 0 {
		return 0
	}
	return int(math.Round((float64(raw) - c.center()) / spd))
}

// Denormalize converts degrees from the centre to a raw servo position,
// clamped to the calibrated range.
func (c ServoCalibration) Denormalize(deg int) int {
	raw := int(math.Round(c.center() + float64(deg)*c.stepsPerDegree()))
	return clamp(raw, c.RangeMin, c.RangeMax)
}
