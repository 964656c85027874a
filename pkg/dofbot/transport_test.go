package dofbot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// mockPort implements serial.Port. Each Write dequeues the next scripted
// response, itself a sequence of read chunks; each Read returns one chunk.
// A nil chunk (or an exhausted script) reads as (0, nil), which is how the
// library reports a read timeout.
type mockPort struct {
	responses [][][]byte
	reads     [][]byte
	writes    [][]byte
	writeErr  error
	closed    bool
	resets    int
}

// reply scripts a response delivered in one read.
func reply(frame []byte) [][]byte {
	return [][]byte{frame}
}

func (m *mockPort) Read(p []byte) (int, error) {
	if len(m.reads) == 0 {
		return 0, nil
	}
	chunk := m.reads[0]
	m.reads = m.reads[1:]
	return copy(p, chunk), nil
}

func (m *mockPort) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	if len(m.responses) > 0 {
		m.reads = append(m.reads, m.responses[0]...)
		m.responses = m.responses[1:]
	}
	return len(p), nil
}

func (m *mockPort) Close() error {
	m.closed = true
	return nil
}

func (m *mockPort) ResetInputBuffer() error {
	m.resets++
	m.reads = nil
	return nil
}

func (m *mockPort) SetMode(mode *serial.Mode) error                      { return nil }
func (m *mockPort) Drain() error                                         { return nil }
func (m *mockPort) ResetOutputBuffer() error                             { return nil }
func (m *mockPort) SetDTR(dtr bool) error                                { return nil }
func (m *mockPort) SetRTS(rts bool) error                                { return nil }
func (m *mockPort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (m *mockPort) SetReadTimeout(t time.Duration) error                 { return nil }
func (m *mockPort) Break(time.Duration) error                            { return nil }

func newTestTransport(port *mockPort, retry RetryPolicy) *SerialTransport {
	tr := NewSerialTransport("/dev/test", DefaultBaudrate, retry, nil)
	tr.openPort = func(string, *serial.Mode) (serial.Port, error) {
		return port, nil
	}
	return tr
}

// quickRetry keeps the per-attempt deadline short so retry tests run fast.
var quickRetry = RetryPolicy{MaxAttempts: 3, Timeout: 10 * time.Millisecond}

var positionReply = []byte{0xFF, 0xFB, 0x05, 0x0A, 0x07, 0xD0, 0x31, 0x12}

func TestTransportOpenIdempotent(t *testing.T) {
	opens := 0
	tr := NewSerialTransport("/dev/test", 0, quickRetry, nil)
	tr.openPort = func(string, *serial.Mode) (serial.Port, error) {
		opens++
		return &mockPort{}, nil
	}

	require.NoError(t, tr.Open())
	require.NoError(t, tr.Open())
	assert.Equal(t, 1, opens)
	assert.True(t, tr.Connected())
}

func TestTransportOpenFailure(t *testing.T) {
	tr := NewSerialTransport("/dev/test", 0, quickRetry, nil)
	tr.openPort = func(string, *serial.Mode) (serial.Port, error) {
		return nil, errors.New("no such device")
	}

	err := tr.Open()
	var connErr *ConnectError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "/dev/test", connErr.Port)
	assert.False(t, tr.Connected())
}

func TestTransportCloseIdempotent(t *testing.T) {
	port := &mockPort{}
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	tr.Close()
	tr.Close()
	assert.True(t, port.closed)
	assert.False(t, tr.Connected())
}

func TestTransportSendNotConnected(t *testing.T) {
	tr := newTestTransport(&mockPort{}, quickRetry)
	assert.ErrorIs(t, tr.Send([]byte{0x01}), ErrNotConnected)

	_, err := tr.SendAndReceive([]byte{0x01}, 8)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTransportSendAndReceive(t *testing.T) {
	port := &mockPort{responses: [][][]byte{reply(positionReply)}}
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	frame := []byte{0xFF, 0xFC, 0x02, 0x31, 0x31}
	resp, err := tr.SendAndReceive(frame, len(positionReply))
	require.NoError(t, err)
	assert.Equal(t, positionReply, resp)
	assert.Equal(t, [][]byte{frame}, port.writes)
}

func TestTransportRetriesOnTimeout(t *testing.T) {
	// First attempt gets nothing, second attempt gets the reply.
	port := &mockPort{responses: [][][]byte{nil, reply(positionReply)}}
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	resp, err := tr.SendAndReceive([]byte{0xFF, 0xFC, 0x02, 0x31, 0x31}, len(positionReply))
	require.NoError(t, err)
	assert.Equal(t, positionReply, resp)
	assert.Len(t, port.writes, 2)
}

func TestTransportRetryBudgetExhausted(t *testing.T) {
	port := &mockPort{} // never replies
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	_, err := tr.SendAndReceive([]byte{0xFF, 0xFC, 0x02, 0x31, 0x31}, 8)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Len(t, port.writes, quickRetry.MaxAttempts)
}

func TestTransportWriteErrorNotRetried(t *testing.T) {
	port := &mockPort{writeErr: errors.New("device unplugged")}
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	_, err := tr.SendAndReceive([]byte{0x01}, 8)
	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, "write", devErr.Op)
	assert.Empty(t, port.writes)
}

func TestTransportReassemblesChunkedReply(t *testing.T) {
	// The reply dribbles in across three reads with an empty read between.
	port := &mockPort{responses: [][][]byte{
		{positionReply[:3], nil, positionReply[3:6], positionReply[6:]},
	}}
	tr := newTestTransport(port, quickRetry)
	require.NoError(t, tr.Open())

	resp, err := tr.SendAndReceive([]byte{0xFF, 0xFC, 0x02, 0x31, 0x31}, len(positionReply))
	require.NoError(t, err)
	assert.Equal(t, positionReply, resp)
	assert.Len(t, port.writes, 1)
}
