package dofbot

import (
	"errors"
	"fmt"
)

var (
	// ErrBadHeader is returned when a frame does not start with the
	// protocol header bytes.
	ErrBadHeader = errors.New("dofbot: bad packet header")

	// ErrShortBuffer is returned when fewer bytes were supplied than the
	// frame's declared length indicates.
	ErrShortBuffer = errors.New("dofbot: packet shorter than declared length")

	// ErrPayloadTooLarge is returned when a payload cannot be framed
	// within the protocol's one-byte length field.
	ErrPayloadTooLarge = errors.New("dofbot: payload too large for length field")

	// ErrTimeout is returned once the transport's retry budget for a
	// request/response exchange is exhausted.
	ErrTimeout = errors.New("dofbot: communication timeout")

	// ErrNotConnected is returned when an operation requires the arm to
	// be connected and ready.
	ErrNotConnected = errors.New("dofbot: arm not connected")

	// ErrInitialRead is returned by Connect when the seed read of the
	// joint positions failed; the arm still reaches Ready, with the
	// affected joints marked stale.
	ErrInitialRead = errors.New("dofbot: initial joint read failed")
)

// ChecksumError reports a frame whose checksum byte does not match the sum
// computed over the command byte and payload.
type ChecksumError struct {
	Expected byte // checksum carried by the frame
	Computed byte // checksum computed from the frame contents
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("dofbot: checksum mismatch: frame has 0x%02X, computed 0x%02X", e.Expected, e.Computed)
}

// DeviceError reports a write-side transport failure. Write errors are
// never retried.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("dofbot: device error: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ConnectError reports a failure to open the serial transport.
type ConnectError struct {
	Port string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("dofbot: open %s: %v", e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }
