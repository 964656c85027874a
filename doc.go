// Package dofbot provides serial control of the Yahboom Dofbot SE 6-DOF
// robotic arm.
//
// The driver speaks the arm's native serial protocol directly over USB,
// with safety clamping of commanded angles, position observation with
// stale-value fallback, and hand-guided episode recording.
//
// # Installation
//
//	go install github.com/gwillem/dofbot/cmd/dofbot@latest
//
// # Usage
//
// First, run setup to detect the arm and write the config file:
//
//	dofbot setup
//
// Then watch the joints live, or record a hand-guided episode:
//
//	dofbot monitor --kinesthetic
//	dofbot record -o episode.jsonl
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/dofbot: CLI with setup, monitor, record and home commands
//   - cmd/dofbot-info: joint snapshot table
//   - pkg/dofbot: protocol codec, serial transport and arm controller
//   - pkg/capture: fixed-rate sampling and episode recording
//   - pkg/logging: zap logger construction
package dofbot
