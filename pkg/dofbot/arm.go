package dofbot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// ConnState is the arm controller's lifecycle state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Ready
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// Reading is one joint observation: the freshest known angle in degrees and
// whether the most recent read attempt actually refreshed it.
type Reading struct {
	Angle float64
	Stale bool
}

// Observation holds one Reading per joint, indexed by Joint-1.
type Observation [NumJoints]Reading

// Reading returns the observation for a joint.
func (o Observation) Reading(j Joint) Reading {
	return o[j-1]
}

// Map returns the observation in the external feature vocabulary, keyed
// "joint_<n>.pos".
func (o Observation) Map() map[string]float64 {
	m := make(map[string]float64, NumJoints)
	for _, j := range AllJoints() {
		m[j.Key()] = o[j-1].Angle
	}
	return m
}

// Action maps joints to target angles in degrees. Joints absent from the
// map are left alone.
type Action map[Joint]float64

// ParseAction converts an external feature map ("joint_<n>.pos" keys) to an
// Action, rejecting unknown keys.
func ParseAction(features map[string]float64) (Action, error) {
	action := make(Action, len(features))
	for key, angle := range features {
		j, ok := JointForKey(key)
		if !ok {
			return nil, fmt.Errorf("unknown action key %q", key)
		}
		action[j] = angle
	}
	return action, nil
}

// Map returns the action in the external feature vocabulary.
func (a Action) Map() map[string]float64 {
	m := make(map[string]float64, len(a))
	for j, angle := range a {
		m[j.Key()] = angle
	}
	return m
}

// HomePose is the arm's rest pose.
var HomePose = Action{
	Base:       90,
	Shoulder:   90,
	Elbow:      90,
	WristPitch: 90,
	WristRoll:  90,
	Gripper:    180,
}

// transport is the request/response surface Arm needs; satisfied by
// SerialTransport and by test doubles.
type transport interface {
	Open() error
	Close()
	Send(frame []byte) error
	SendAndReceive(frame []byte, respLen int) ([]byte, error)
}

// Arm drives one Dofbot SE over a serial transport.
//
// Arm is not internally synchronized: it assumes a single logical owner
// issuing calls serially. Callers driving it from multiple goroutines must
// serialize access around the whole controller.
type Arm struct {
	cfg Config
	tr  transport
	log *zap.Logger

	state  ConnState
	last   [NumJoints]float64
	known  [NumJoints]bool
	stale  [NumJoints]bool
	torque bool
}

// NewArm creates an arm controller for the configured port. A nil logger
// disables logging. The serial port is not opened until Connect.
func NewArm(cfg Config, log *zap.Logger) *Arm {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arm{
		cfg: cfg,
		tr:  NewSerialTransport(cfg.Port, cfg.Baudrate, cfg.Retry(), log),
		log: log,
	}
}

// State returns the controller's lifecycle state.
func (a *Arm) State() ConnState {
	return a.state
}

// Config returns the configuration the arm was built with.
func (a *Arm) Config() Config {
	return a.cfg
}

// TorqueEnabled reports the last commanded torque state.
func (a *Arm) TorqueEnabled() bool {
	return a.torque
}

// Connect opens the transport, optionally reads every joint once to seed
// the position cache, enables torque, and moves the controller to Ready.
//
// A transport open failure returns a ConnectError with the controller back
// at Disconnected. A failed seed read is reported as ErrInitialRead with
// the affected joints marked stale; the arm still reaches Ready.
func (a *Arm) Connect(calibrate bool) error {
	if a.state != Disconnected {
		return fmt.Errorf("connect: arm is %s", a.state)
	}
	a.state = Connecting
	if err := a.tr.Open(); err != nil {
		a.state = Disconnected
		return fmt.Errorf("connect: %w", err)
	}
	a.state = Connected

	var seedFailed []Joint
	if calibrate {
		for _, j := range AllJoints() {
			angle, err := a.readJoint(j)
			if err != nil {
				a.stale[j-1] = true
				seedFailed = append(seedFailed, j)
				a.log.Warn("seed read failed", zap.Stringer("joint", j), zap.Error(err))
				continue
			}
			a.setKnown(j, angle)
		}
	}

	if err := a.sendTorque(true); err != nil {
		a.tr.Close()
		a.reset()
		return fmt.Errorf("connect: enable torque: %w", err)
	}
	a.torque = true

	// Ready cue; cosmetic, failures are logged only.
	if err := a.sendRGB(0, 255, 0); err != nil {
		a.log.Warn("set status led", zap.Error(err))
	}

	a.state = Ready
	a.log.Info("arm connected", zap.String("port", a.cfg.Port), zap.Bool("seeded", calibrate))
	if len(seedFailed) > 0 {
		return fmt.Errorf("%w: joints %v", ErrInitialRead, seedFailed)
	}
	return nil
}

// Disconnect tears the connection down. When configured, it first sends a
// best-effort torque-disable so the arm can be moved by hand, even if the
// transport is already in an error state; failures there are logged, never
// raised. Disconnect is idempotent and never returns an error.
func (a *Arm) Disconnect() {
	if a.state == Disconnected {
		return
	}
	if a.cfg.DisableTorqueOnDisconnect {
		if err := a.sendTorque(false); err != nil {
			a.log.Warn("disable torque on disconnect", zap.Error(err))
		}
	}
	if err := a.sendRGB(255, 0, 0); err != nil {
		a.log.Debug("set status led", zap.Error(err))
	}
	a.tr.Close()
	a.reset()
	a.log.Info("arm disconnected", zap.String("port", a.cfg.Port))
}

func (a *Arm) reset() {
	a.state = Disconnected
	a.last = [NumJoints]float64{}
	a.known = [NumJoints]bool{}
	a.stale = [NumJoints]bool{}
	a.torque = false
}

// Observation reads the current angle of every joint. A read failure for a
// single joint falls back to its cached last-known-good angle (or the
// mid-range default if the joint was never read) with the Stale flag set;
// it never fails the whole call. Only calling outside Ready is an error.
func (a *Arm) Observation() (Observation, error) {
	if a.state != Ready {
		return Observation{}, ErrNotConnected
	}
	var obs Observation
	for _, j := range AllJoints() {
		angle, err := a.readJoint(j)
		if err != nil {
			a.stale[j-1] = true
			fallback := a.last[j-1]
			if !a.known[j-1] {
				fallback = defaultAngle(j)
			}
			obs[j-1] = Reading{Angle: fallback, Stale: true}
			a.log.Debug("joint read failed, using cached value",
				zap.Stringer("joint", j), zap.Error(err))
			continue
		}
		a.setKnown(j, angle)
		obs[j-1] = Reading{Angle: angle}
	}
	return obs, nil
}

// SendAction clamps each requested target against the joint limits and the
// relative step cap, converts to raw units, and writes the positions to the
// arm. It returns the accepted (clamped) angles: these may differ from the
// request and are what callers must treat as ground truth.
//
// A full six-joint action is batched into a single write-all frame. Partial
// actions are written one frame per joint in joint order; a write failure
// stops the call there, returning the joints already applied alongside the
// error. Joints already written are not rolled back.
func (a *Arm) SendAction(target Action) (Action, error) {
	if a.state != Ready {
		return nil, ErrNotConnected
	}
	if len(target) == 0 {
		return Action{}, nil
	}

	joints := make([]Joint, 0, len(target))
	for j := range target {
		if !j.Valid() {
			return nil, fmt.Errorf("invalid joint %d", int(j))
		}
		joints = append(joints, j)
	}
	slices.Sort(joints)

	clamped := make(Action, len(joints))
	for _, j := range joints {
		clamped[j] = ClampTarget(target[j], a.cfg.Limits(j), a.last[j-1], a.known[j-1], a.cfg.MaxRelativeTarget)
	}

	if len(joints) == NumJoints {
		if err := a.writeAll(clamped, a.cfg.MoveDuration()); err != nil {
			return Action{}, err
		}
		for _, j := range joints {
			a.setKnown(j, clamped[j])
		}
		return clamped, nil
	}

	accepted := make(Action, len(joints))
	for _, j := range joints {
		if err := a.writeJoint(j, clamped[j]); err != nil {
			return accepted, fmt.Errorf("write %s: %w", j, err)
		}
		a.setKnown(j, clamped[j])
		accepted[j] = clamped[j]
	}
	return accepted, nil
}

// MoveHome drives all joints to HomePose, giving the arm HomeMoveDuration
// to get there. The pose passes through the same safety clamping as any
// other action.
func (a *Arm) MoveHome() error {
	if a.state != Ready {
		return ErrNotConnected
	}
	clamped := make(Action, NumJoints)
	for _, j := range AllJoints() {
		clamped[j] = ClampTarget(HomePose[j], a.cfg.Limits(j), a.last[j-1], a.known[j-1], a.cfg.MaxRelativeTarget)
	}
	if err := a.writeAll(clamped, HomeMoveDuration); err != nil {
		return err
	}
	for _, j := range AllJoints() {
		a.setKnown(j, clamped[j])
	}
	return nil
}

// SetTorque enables or disables holding torque on all joints. Disabling
// torque lets the arm be moved by hand (kinesthetic teaching).
func (a *Arm) SetTorque(on bool) error {
	if a.state != Ready {
		return ErrNotConnected
	}
	if err := a.sendTorque(on); err != nil {
		return err
	}
	a.torque = on
	return nil
}

// SetRGB sets the base LED color.
func (a *Arm) SetRGB(r, g, b byte) error {
	if a.state != Ready {
		return ErrNotConnected
	}
	return a.sendRGB(r, g, b)
}

// SetBuzzer turns the buzzer on or off. The duration code is passed to the
// arm as-is (0xFF means continuous); turning the buzzer off forces it to 0.
func (a *Arm) SetBuzzer(on bool, duration byte) error {
	if a.state != Ready {
		return ErrNotConnected
	}
	if !on {
		duration = 0
	}
	return a.sendCommand(CmdBuzzer, []byte{duration})
}

func defaultAngle(j Joint) float64 {
	if j == WristRoll {
		return 135
	}
	return 90
}

func (a *Arm) setKnown(j Joint, angle float64) {
	a.last[j-1] = angle
	a.known[j-1] = true
	a.stale[j-1] = false
}

func (a *Arm) readJoint(j Joint) (float64, error) {
	frame, err := Encode(CmdServoRead+Command(j), nil)
	if err != nil {
		return 0, err
	}
	resp, err := a.tr.SendAndReceive(frame, positionReplyLen)
	if err != nil {
		return 0, err
	}
	cmd, payload, err := Decode(resp)
	if err != nil {
		return 0, err
	}
	if cmd != CmdPositionReply || len(payload) != 3 {
		return 0, fmt.Errorf("unexpected reply command 0x%02X", byte(cmd))
	}
	if payload[2] != byte(CmdServoRead)+byte(j) {
		return 0, fmt.Errorf("reply for wrong servo: 0x%02X", payload[2])
	}
	raw := int(payload[0])<<8 | int(payload[1])
	if raw == 0 {
		// The arm reports 0 while a servo has no valid position yet.
		return 0, errors.New("no position available")
	}
	return ChannelFor(j).RawToAngle(raw), nil
}

func (a *Arm) writeJoint(j Joint, angle float64) error {
	raw := ChannelFor(j).AngleToRaw(angle)
	ms := durationMs(a.cfg.MoveDuration())
	payload := []byte{byte(raw >> 8), byte(raw), byte(ms >> 8), byte(ms)}
	return a.sendCommand(CmdServoWrite+Command(j), payload)
}

// writeAll needs a target angle for every joint.
func (a *Arm) writeAll(targets Action, dur time.Duration) error {
	payload := make([]byte, 0, NumJoints*2+2)
	for _, j := range AllJoints() {
		raw := ChannelFor(j).AngleToRaw(targets[j])
		payload = append(payload, byte(raw>>8), byte(raw))
	}
	ms := durationMs(dur)
	payload = append(payload, byte(ms>>8), byte(ms))
	return a.sendCommand(CmdServoWriteAll, payload)
}

func (a *Arm) sendCommand(cmd Command, payload []byte) error {
	frame, err := Encode(cmd, payload)
	if err != nil {
		return err
	}
	return a.tr.Send(frame)
}

func (a *Arm) sendTorque(on bool) error {
	v := byte(0)
	if on {
		v = 1
	}
	return a.sendCommand(CmdTorque, []byte{v})
}

func (a *Arm) sendRGB(r, g, b byte) error {
	return a.sendCommand(CmdRGB, []byte{r, g, b})
}

func durationMs(d time.Duration) int {
	ms := int(d / time.Millisecond)
	if ms < 0 {
		return 0
	}
	if ms > 0xFFFF {
		return 0xFFFF
	}
	return ms
}
