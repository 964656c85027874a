package dofbot

// Limits bounds a joint's commanded angle in degrees.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ClampTarget enforces the motion-safety rules on a requested joint angle.
// The request is first clamped to the joint's absolute limits; then, when
// maxStep is positive and a last known angle exists, the result is further
// clamped so it moves at most maxStep degrees from that angle, preserving
// the direction of the requested delta. With no last known angle only the
// absolute limits apply.
func ClampTarget(requested float64, lim Limits, last float64, lastKnown bool, maxStep float64) float64 {
	clamped := clampFloat(requested, lim.Min, lim.Max)
	if maxStep <= 0 || !lastKnown {
		return clamped
	}
	return clampFloat(clamped, last-maxStep, last+maxStep)
}
