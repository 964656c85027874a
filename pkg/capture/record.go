package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Frame is one recorded line in an episode file.
type Frame struct {
	Timestamp time.Time          `json:"ts"`
	Positions map[string]float64 `json:"positions"`
	Stale     bool               `json:"stale,omitempty"`
}

// Recorder appends samples to a JSON-lines episode file, one frame per line.
type Recorder struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
	n   int
}

// NewRecorder creates (or truncates) an episode file at path.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create episode file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &Recorder{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

// Record appends one sample. Samples carrying an error are skipped: they
// hold no positions.
func (r *Recorder) Record(s Sample) error {
	if s.Error != nil {
		return nil
	}
	frame := Frame{Timestamp: s.Timestamp, Positions: s.Positions, Stale: s.Stale}
	if err := r.enc.Encode(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	r.n++
	return nil
}

// Frames returns the number of frames recorded so far.
func (r *Recorder) Frames() int {
	return r.n
}

// Close flushes and closes the episode file.
func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}
