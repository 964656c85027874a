package dofbot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Port != "/dev/ttyUSB0" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Baudrate != 115200 {
		t.Errorf("Baudrate = %d", cfg.Baudrate)
	}
	if cfg.Timeout() != 200*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
	if !cfg.DisableTorqueOnDisconnect {
		t.Error("DisableTorqueOnDisconnect should default to true")
	}
	if got := cfg.Retry(); got.MaxAttempts != 3 || got.Timeout != 200*time.Millisecond {
		t.Errorf("Retry = %+v", got)
	}
	if lim := cfg.Limits(WristRoll); lim.Max != 270 {
		t.Errorf("WristRoll limit max = %v, want 270", lim.Max)
	}
	if lim := cfg.Limits(Base); lim.Max != 180 {
		t.Errorf("Base limit max = %v, want 180", lim.Max)
	}
}

func TestLoadConfigFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dofbot.json")
	data := `{"port": "/dev/ttyACM1", "baudrate": 9600, "max_relative_target": 15}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "/dev/ttyACM1" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Baudrate != 9600 {
		t.Errorf("Baudrate = %d", cfg.Baudrate)
	}
	if cfg.MaxRelativeTarget != 15 {
		t.Errorf("MaxRelativeTarget = %v", cfg.MaxRelativeTarget)
	}
	// Absent fields keep their defaults.
	if cfg.TimeoutMs != DefaultTimeoutMs {
		t.Errorf("TimeoutMs = %d, want default %d", cfg.TimeoutMs, DefaultTimeoutMs)
	}
	if cfg.MoveDurationMs != DefaultMoveDurationMs {
		t.Errorf("MoveDurationMs = %d, want default %d", cfg.MoveDurationMs, DefaultMoveDurationMs)
	}
}

func TestLoadConfigRequiresPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dofbot.json")
	if err := os.WriteFile(path, []byte(`{"baudrate": 115200}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFrom(path); err == nil {
		t.Error("expected error for missing port")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dofbot.json")
	cfg := DefaultConfig("/dev/ttyUSB3")
	cfg.Retries = 5
	cfg.JointLimits[0] = Limits{Min: 20, Max: 160}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Port != cfg.Port || loaded.Retries != 5 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Limits(Base) != (Limits{Min: 20, Max: 160}) {
		t.Errorf("Base limits = %+v", loaded.Limits(Base))
	}
}
