// Package capture samples arm joint positions on a fixed clock, for live
// monitoring and for recording demonstrations.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/dofbot/pkg/dofbot"
)

// Sample is one observation of the arm.
type Sample struct {
	Positions map[string]float64
	Stale     bool // at least one joint served from cache
	Timestamp time.Time
	Error     error
}

// Source is the arm surface the capture loop needs.
type Source interface {
	Observation() (dofbot.Observation, error)
	SetTorque(on bool) error
}

// Controller runs the sampling loop against one arm.
type Controller struct {
	arm Source
	hz  int

	// Kinesthetic mode releases torque while sampling so the arm can be
	// guided by hand, and restores it on shutdown.
	kinesthetic bool

	mu       sync.Mutex
	running  bool
	sampleCh chan Sample
	logCh    chan string
}

// Config holds configuration for the controller.
type Config struct {
	Hz          int
	Kinesthetic bool
}

// NewController creates a capture controller for an already connected arm.
func NewController(arm Source, cfg Config) *Controller {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	return &Controller{
		arm:         arm,
		hz:          cfg.Hz,
		kinesthetic: cfg.Kinesthetic,
		sampleCh:    make(chan Sample, 1),
		logCh:       make(chan string, 10),
	}
}

// Samples returns a channel that receives observation samples.
func (c *Controller) Samples() <-chan Sample {
	return c.sampleCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the sampling frequency.
func (c *Controller) Hz() int {
	return c.hz
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start begins the sampling loop and blocks until ctx is canceled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	if c.kinesthetic {
		if err := c.arm.SetTorque(false); err != nil {
			c.log("Warning: failed to release torque: %v", err)
		} else {
			c.log("Torque released, arm can be guided by hand")
		}
	}
	c.log("Sampling started at %d Hz", c.hz)

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case <-ticker.C:
			c.step()
		}
	}
}

func (c *Controller) step() {
	obs, err := c.arm.Observation()
	if err != nil {
		c.log("Read error: %v", err)
		c.sendSample(Sample{Error: err, Timestamp: time.Now()})
		return
	}

	stale := false
	for _, j := range dofbot.AllJoints() {
		if obs.Reading(j).Stale {
			stale = true
			break
		}
	}

	c.sendSample(Sample{
		Positions: obs.Map(),
		Stale:     stale,
		Timestamp: time.Now(),
	})
}

func (c *Controller) sendSample(s Sample) {
	select {
	case c.sampleCh <- s:
	default:
		// Drop the stale sample if the consumer is behind, keep the new one
		select {
		case <-c.sampleCh:
		default:
		}
		c.sampleCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if c.kinesthetic {
		if err := c.arm.SetTorque(true); err != nil {
			c.log("Warning: failed to restore torque: %v", err)
		} else {
			c.log("Torque restored")
		}
	}
	c.log("Sampling stopped")
}
