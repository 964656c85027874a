package dofbot

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// RetryPolicy bounds a request/response exchange on the transport.
type RetryPolicy struct {
	MaxAttempts int           // total attempts per request, including the first
	Timeout     time.Duration // per-attempt response deadline
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeoutMs * time.Millisecond
	}
	return p
}

// connectionSettle is how long the USB serial adapter needs after opening
// before it accepts traffic.
const connectionSettle = 200 * time.Millisecond

// SerialTransport owns one exclusive serial connection to the arm.
//
// It is not internally synchronized and has no request queue: callers must
// issue at most one request at a time. Each call blocks until it completes,
// bounded by Timeout x MaxAttempts.
type SerialTransport struct {
	portName string
	mode     serial.Mode
	retry    RetryPolicy
	log      *zap.Logger

	// openPort is swapped out in tests.
	openPort func(string, *serial.Mode) (serial.Port, error)
	port     serial.Port
}

// NewSerialTransport creates a transport for the named port. A nil logger
// disables logging.
func NewSerialTransport(port string, baudrate int, retry RetryPolicy, log *zap.Logger) *SerialTransport {
	if baudrate == 0 {
		baudrate = DefaultBaudrate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SerialTransport{
		portName: port,
		mode: serial.Mode{
			BaudRate: baudrate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		retry:    retry.normalized(),
		log:      log,
		openPort: serial.Open,
	}
}

// Open opens the serial connection. Opening an already open transport is a
// no-op.
func (t *SerialTransport) Open() error {
	if t.port != nil {
		return nil
	}
	port, err := t.openPort(t.portName, &t.mode)
	if err != nil {
		return &ConnectError{Port: t.portName, Err: err}
	}
	if err := port.SetReadTimeout(t.retry.Timeout); err != nil {
		port.Close()
		return &ConnectError{Port: t.portName, Err: err}
	}
	time.Sleep(connectionSettle)
	// Drop any stale bytes from a previous session.
	port.ResetInputBuffer()
	port.ResetOutputBuffer()
	t.port = port
	t.log.Info("serial port open", zap.String("port", t.portName), zap.Int("baudrate", t.mode.BaudRate))
	return nil
}

// Close releases the serial connection. It is idempotent and never fails;
// close errors are logged and swallowed.
func (t *SerialTransport) Close() {
	if t.port == nil {
		return
	}
	if err := t.port.Close(); err != nil {
		t.log.Warn("close serial port", zap.Error(err))
	}
	t.port = nil
}

// Connected reports whether the transport currently holds an open port.
func (t *SerialTransport) Connected() bool {
	return t.port != nil
}

// Send writes a frame that expects no response. Write failures surface
// immediately as a DeviceError and are never retried.
func (t *SerialTransport) Send(frame []byte) error {
	if t.port == nil {
		return ErrNotConnected
	}
	return t.write(frame)
}

// SendAndReceive writes a frame and reads exactly respLen response bytes.
// Timeouts and partial reads are retried, re-sending the frame each
// attempt, until the retry budget is exhausted; the final failure surfaces
// as ErrTimeout. Write errors are not retried.
func (t *SerialTransport) SendAndReceive(frame []byte, respLen int) ([]byte, error) {
	if t.port == nil {
		return nil, ErrNotConnected
	}
	var lastErr error
	for attempt := 1; attempt <= t.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", t.retry.MaxAttempts))
			t.port.ResetInputBuffer()
		}
		if err := t.write(frame); err != nil {
			return nil, err
		}
		resp, err := t.readFull(respLen)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, t.retry.MaxAttempts, lastErr)
}

func (t *SerialTransport) write(frame []byte) error {
	n, err := t.port.Write(frame)
	if err != nil {
		return &DeviceError{Op: "write", Err: err}
	}
	if n != len(frame) {
		return &DeviceError{Op: "write", Err: fmt.Errorf("wrote %d of %d bytes", n, len(frame))}
	}
	return nil
}

// readFull reads exactly n bytes or fails once the per-attempt deadline
// passes. Read-side errors count against the attempt rather than aborting
// the whole exchange.
func (t *SerialTransport) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	total := 0
	deadline := time.Now().Add(t.retry.Timeout)
	for total < n {
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("read %d of %d bytes", total, n)
		}
		k, err := t.port.Read(buf[total:])
		if err != nil {
			return nil, fmt.Errorf("read: %v", err)
		}
		// A zero-byte read means the port's read timeout expired with no
		// data; the deadline check above bounds the loop.
		total += k
	}
	return buf, nil
}
