package logging

import "testing"

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "", "bogus"} {
		log := New(Config{Level: level})
		if log == nil {
			t.Fatalf("New(%q) returned nil", level)
		}
		log.Sync()
	}
}

func TestNewWithFile(t *testing.T) {
	path := t.TempDir() + "/dofbot.log"
	log := New(Config{Level: "debug", File: FileConfig{Filename: path, MaxSizeMB: 1}})
	log.Info("hello")
	log.Sync()
}

func TestQuiet(t *testing.T) {
	if Quiet() == nil {
		t.Fatal("Quiet returned nil")
	}
}
