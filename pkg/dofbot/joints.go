// Package dofbot drives the Yahboom Dofbot SE 6-DOF robotic arm over its
// serial protocol.
package dofbot

import (
	"fmt"
	"strings"
)

// Joint identifies one of the six servos, numbered 1-6 as on the arm itself.
type Joint int

const (
	Base       Joint = iota + 1 // base rotation
	Shoulder                    // mounted reversed
	Elbow                       // mounted reversed
	WristPitch                  // mounted reversed
	WristRoll                   // extended 270 degree range
	Gripper
)

// NumJoints is the number of servos on the arm.
const NumJoints = 6

// AllJoints returns all joints in servo-ID order.
func AllJoints() []Joint {
	return []Joint{Base, Shoulder, Elbow, WristPitch, WristRoll, Gripper}
}

// Valid reports whether j is a real servo ID.
func (j Joint) Valid() bool {
	return j >= Base && j <= Gripper
}

func (j Joint) String() string {
	return fmt.Sprintf("joint_%d", int(j))
}

// Key returns the observation/action feature key for this joint,
// e.g. "joint_1.pos".
func (j Joint) Key() string {
	return fmt.Sprintf("joint_%d.pos", int(j))
}

// JointForKey parses a feature key of the form "joint_<n>.pos".
func JointForKey(key string) (Joint, bool) {
	name, ok := strings.CutSuffix(key, ".pos")
	if !ok {
		return 0, false
	}
	num, ok := strings.CutPrefix(name, "joint_")
	if !ok || len(num) != 1 {
		return 0, false
	}
	j := Joint(num[0] - '0')
	if !j.Valid() {
		return 0, false
	}
	return j, true
}
