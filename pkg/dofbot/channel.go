package dofbot

import "math"

// Channel describes the actuator behind one joint: its raw position range,
// native angle span, and mounting orientation.
type Channel struct {
	Joint     Joint
	RawMin    int
	RawMax    int
	AngleSpan float64
	Reversed  bool
}

// Raw unit ranges per the vendor servo datasheet. Joint 5 uses an extended
// range servo.
const (
	stdRawMin = 900
	stdRawMax = 3100
	extRawMin = 380
	extRawMax = 3700

	stdAngleSpan = 180.0
	extAngleSpan = 270.0
)

// Joints 2-4 are mounted flipped relative to their logical angle convention.
var channels = [NumJoints]Channel{
	{Joint: Base, RawMin: stdRawMin, RawMax: stdRawMax, AngleSpan: stdAngleSpan},
	{Joint: Shoulder, RawMin: stdRawMin, RawMax: stdRawMax, AngleSpan: stdAngleSpan, Reversed: true},
	{Joint: Elbow, RawMin: stdRawMin, RawMax: stdRawMax, AngleSpan: stdAngleSpan, Reversed: true},
	{Joint: WristPitch, RawMin: stdRawMin, RawMax: stdRawMax, AngleSpan: stdAngleSpan, Reversed: true},
	{Joint: WristRoll, RawMin: extRawMin, RawMax: extRawMax, AngleSpan: extAngleSpan},
	{Joint: Gripper, RawMin: stdRawMin, RawMax: stdRawMax, AngleSpan: stdAngleSpan},
}

// ChannelFor returns the static channel description for a joint.
func ChannelFor(j Joint) Channel {
	return channels[j-1]
}

// AngleToRaw converts an angle in degrees to raw servo units. The angle is
// clamped to [0, AngleSpan], mount reversal is applied, and the result is
// rounded to the nearest raw unit. Total: out-of-range input clamps rather
// than fails.
func (c Channel) AngleToRaw(deg float64) int {
	deg = clampFloat(deg, 0, c.AngleSpan)
	if c.Reversed {
		deg = c.AngleSpan - deg
	}
	return int(math.Round(deg/c.AngleSpan*float64(c.RawMax-c.RawMin))) + c.RawMin
}

// RawToAngle converts raw servo units to an angle in degrees, clamping the
// raw value to the channel range and un-reversing if needed.
func (c Channel) RawToAngle(raw int) float64 {
	if raw < c.RawMin {
		raw = c.RawMin
	}
	if raw > c.RawMax {
		raw = c.RawMax
	}
	deg := c.AngleSpan * float64(raw-c.RawMin) / float64(c.RawMax-c.RawMin)
	if c.Reversed {
		deg = c.AngleSpan - deg
	}
	return deg
}

// Resolution returns the angle covered by one raw unit, in degrees.
func (c Channel) Resolution() float64 {
	return c.AngleSpan / float64(c.RawMax-c.RawMin)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
