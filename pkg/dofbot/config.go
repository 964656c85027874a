package dofbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const DefaultConfigFile = "dofbot.json"

// Defaults applied by DefaultConfig and LoadConfigFrom.
const (
	DefaultBaudrate          = 115200
	DefaultTimeoutMs         = 200
	DefaultRetries           = 2
	DefaultMaxRelativeTarget = 30.0
	DefaultMoveDurationMs    = 100
)

// HomeMoveDuration is how long MoveHome gives the arm to reach the home pose.
const HomeMoveDuration = 2 * time.Second

// Config holds the driver configuration. It is supplied at construction and
// treated as immutable afterwards.
type Config struct {
	// Port is the serial device path, e.g. "/dev/ttyUSB0". Required.
	Port string `json:"port"`

	Baudrate  int `json:"baudrate"`
	TimeoutMs int `json:"timeout_ms"` // per-attempt response deadline
	Retries   int `json:"retries"`    // extra attempts after the first

	// DisableTorqueOnDisconnect makes Disconnect send a best-effort
	// torque-disable so the arm can be moved by hand afterwards.
	DisableTorqueOnDisconnect bool `json:"disable_torque_on_disconnect"`

	// MaxRelativeTarget caps how far a joint may move in a single action,
	// in degrees relative to its last known angle. Zero disables the cap.
	MaxRelativeTarget float64 `json:"max_relative_target"`

	// MoveDurationMs is the movement duration sent with position writes.
	MoveDurationMs int `json:"move_duration_ms"`

	// JointLimits holds the absolute angle bounds, indexed by Joint-1.
	JointLimits [NumJoints]Limits `json:"joint_limits"`

	// Calibration is an opaque reference (typically a file path) consumed
	// by external tooling, not by this driver.
	Calibration string `json:"calibration,omitempty"`
}

// DefaultConfig returns a Config for the given port with all defaults set.
func DefaultConfig(port string) Config {
	return Config{
		Port:                      port,
		Baudrate:                  DefaultBaudrate,
		TimeoutMs:                 DefaultTimeoutMs,
		Retries:                   DefaultRetries,
		DisableTorqueOnDisconnect: true,
		MaxRelativeTarget:         DefaultMaxRelativeTarget,
		MoveDurationMs:            DefaultMoveDurationMs,
		JointLimits:               DefaultJointLimits(),
	}
}

// DefaultJointLimits returns the full mechanical range for every joint.
func DefaultJointLimits() [NumJoints]Limits {
	var limits [NumJoints]Limits
	for _, j := range AllJoints() {
		limits[j-1] = Limits{Min: 0, Max: ChannelFor(j).AngleSpan}
	}
	return limits
}

// Timeout returns the per-attempt response deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MoveDuration returns the movement duration sent with position writes.
func (c *Config) MoveDuration() time.Duration {
	return time.Duration(c.MoveDurationMs) * time.Millisecond
}

// Retry returns the transport retry policy derived from the config.
func (c *Config) Retry() RetryPolicy {
	return RetryPolicy{MaxAttempts: c.Retries + 1, Timeout: c.Timeout()}
}

// Limits returns the absolute angle bounds for a joint.
func (c *Config) Limits(j Joint) Limits {
	return c.JointLimits[j-1]
}

// LoadConfig loads configuration from the default config file.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Absent fields
// keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig("")
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if cfg.Port == "" {
		return nil, errors.New("config: port is required")
	}
	return &cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists.
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
