package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaderToVolume(t *testing.T) {
	tests := []struct {
		v    uint8
		want float64
	}{
		{0, 0},
		{127, 1},
		{64, 0.50393700787},
		{255, 1}, // clamped
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FaderToVolume(tt.v), 1e-9, "v=%d", tt.v)
	}
}

func TestFaderToGain(t *testing.T) {
	tests := []struct {
		v    uint8
		want float64
	}{
		{127, 0},
		{0, -60},
		{63, -30.23622047244},
		{200, 0}, // clamped
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, FaderToGain(tt.v), 1e-9, "v=%d", tt.v)
	}
}

func TestFaderMappingsAreMonotonic(t *testing.T) {
	for v := 1; v <= MaxControlValue; v++ {
		assert.Greater(t, FaderToVolume(uint8(v)), FaderToVolume(uint8(v-1)))
		assert.Greater(t, FaderToGain(uint8(v)), FaderToGain(uint8(v-1)))
	}
}
