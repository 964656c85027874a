package dofbot

import (
	"math"
	"testing"
)

func TestAngleToRaw(t *testing.T) {
	tests := []struct {
		joint Joint
		deg   float64
		want  int
	}{
		{Base, 0, 900},
		{Base, 180, 3100},
		{Base, 90, 2000},
		{Shoulder, 0, 3100},  // reversed mount
		{Shoulder, 180, 900}, // reversed mount
		{Shoulder, 90, 2000},
		{WristRoll, 0, 380},
		{WristRoll, 270, 3700},
		{WristRoll, 135, 2040},
		{Gripper, 180, 3100},
	}
	for _, tt := range tests {
		got := ChannelFor(tt.joint).AngleToRaw(tt.deg)
		if got != tt.want {
			t.Errorf("%s AngleToRaw(%v) = %d, want %d", tt.joint, tt.deg, got, tt.want)
		}
	}
}

func TestAngleToRawClamps(t *testing.T) {
	c := ChannelFor(Base)
	if got := c.AngleToRaw(-10); got != 900 {
		t.Errorf("AngleToRaw(-10) = %d, want 900", got)
	}
	if got := c.AngleToRaw(200); got != 3100 {
		t.Errorf("AngleToRaw(200) = %d, want 3100", got)
	}
}

func TestRawToAngleClamps(t *testing.T) {
	c := ChannelFor(Base)
	if got := c.RawToAngle(0); got != 0 {
		t.Errorf("RawToAngle(0) = %v, want 0", got)
	}
	if got := c.RawToAngle(5000); got != 180 {
		t.Errorf("RawToAngle(5000) = %v, want 180", got)
	}
}

func TestRoundTripWithinResolution(t *testing.T) {
	for _, j := range AllJoints() {
		c := ChannelFor(j)
		for deg := 0.0; deg <= c.AngleSpan; deg += 7.3 {
			back := c.RawToAngle(c.AngleToRaw(deg))
			if math.Abs(back-deg) > c.Resolution() {
				t.Errorf("%s: %v degrees came back as %v (resolution %v)",
					j, deg, back, c.Resolution())
			}
		}
	}
}

func TestReversedMountSymmetry(t *testing.T) {
	// A reversed joint at angle A occupies the same raw position as a
	// non-reversed joint with the same range at span-A.
	rev := ChannelFor(Shoulder)
	fwd := ChannelFor(Base)
	for deg := 0.0; deg <= 180; deg += 15 {
		if got, want := rev.AngleToRaw(deg), fwd.AngleToRaw(180-deg); got != want {
			t.Errorf("reversed AngleToRaw(%v) = %d, want %d", deg, got, want)
		}
	}
}
