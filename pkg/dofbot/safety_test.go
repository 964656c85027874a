package dofbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampTarget(t *testing.T) {
	full := Limits{Min: 0, Max: 180}

	tests := []struct {
		name      string
		requested float64
		lim       Limits
		last      float64
		lastKnown bool
		maxStep   float64
		want      float64
	}{
		{"step cap limits large move", 100, full, 50, true, 30, 80},
		{"step cap preserves direction down", 0, full, 50, true, 30, 20},
		{"within step cap passes through", 70, full, 50, true, 30, 70},
		{"absolute limits apply first", 5, Limits{Min: 10, Max: 170}, 0, false, 0, 10},
		{"absolute max", 200, full, 0, false, 0, 180},
		{"no last known skips step cap", 160, full, 50, false, 30, 160},
		{"zero max step disables cap", 160, full, 50, true, 0, 160},
		{"both caps interact", 175, Limits{Min: 10, Max: 170}, 150, true, 30, 170},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampTarget(tt.requested, tt.lim, tt.last, tt.lastKnown, tt.maxStep)
			assert.Equal(t, tt.want, got)
		})
	}
}
