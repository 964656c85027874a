package dofbot

// Frame layout: header(2) + length(1) + command(1) + payload(n) + checksum(1).
// The length byte counts everything after itself (command, payload and
// checksum, so payload length + 2). The checksum is the byte sum over the
// command byte and the payload.
const (
	packetHeader   = 0xFF
	packetDeviceID = 0xFC // host -> arm
	packetReplyID  = 0xFB // arm -> host
)

// Command identifies a protocol operation. Values are the vendor's servo
// protocol constants.
type Command byte

const (
	CmdRGB           Command = 0x02 // payload: r, g, b
	CmdBuzzer        Command = 0x06 // payload: duration code (0x00 off, 0xFF continuous)
	CmdServoWrite    Command = 0x10 // base; add the joint number
	CmdTorque        Command = 0x1A // payload: 0x00 off, 0x01 on
	CmdServoWriteAll Command = 0x1D // payload: 6 x position (hi, lo) + duration (hi, lo)
	CmdServoRead     Command = 0x30 // base; add the joint number

	// CmdPositionReply is the command byte of a position reply from the
	// arm: payload is position (hi, lo) plus an echo of the read command.
	CmdPositionReply Command = 0x0A
)

// MaxPayload is the largest payload the one-byte length field can frame.
const MaxPayload = 0xFF - 2

// positionReplyLen is the wire size of a position reply frame.
const positionReplyLen = 8

func checksum(cmd Command, payload []byte) byte {
	sum := byte(cmd)
	for _, b := range payload {
		sum += b
	}
	return sum
}

// Encode builds a wire frame for the given command and payload.
func Encode(cmd Command, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	frame := make([]byte, 0, len(payload)+5)
	frame = append(frame, packetHeader, packetDeviceID, byte(len(payload)+2), byte(cmd))
	frame = append(frame, payload...)
	frame = append(frame, checksum(cmd, payload))
	return frame, nil
}

// Decode validates a wire frame and returns its command and payload. Both
// host frames (device id 0xFC) and arm replies (0xFB) are accepted.
func Decode(frame []byte) (Command, []byte, error) {
	if len(frame) < 3 {
		return 0, nil, ErrShortBuffer
	}
	if frame[0] != packetHeader || (frame[1] != packetDeviceID && frame[1] != packetReplyID) {
		return 0, nil, ErrBadHeader
	}
	declared := int(frame[2])
	if declared < 2 || len(frame) < 3+declared {
		return 0, nil, ErrShortBuffer
	}
	total := 3 + declared
	cmd := Command(frame[3])
	payload := make([]byte, declared-2)
	copy(payload, frame[4:total-1])

	got := frame[total-1]
	if want := checksum(cmd, payload); got != want {
		return 0, nil, &ChecksumError{Expected: got, Computed: want}
	}
	return cmd, payload, nil
}
