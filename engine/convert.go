package engine

import "golang.org/x/exp/constraints"

const (
	// MaxControlValue is the top of the 7-bit control value range.
	MaxControlValue = 127
	// MinGainDB is the extension fader gain at the bottom of its travel.
	MinGainDB = -60.0
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FaderToVolume maps a main fader value to a linear volume fraction, v/127.
func FaderToVolume(v uint8) float64 {
	return float64(clamp(v, 0, MaxControlValue)) / MaxControlValue
}

// FaderToGain maps an extension fader value to decibels: 127 is unity (0 dB)
// and 0 is -60 dB.
func FaderToGain(v uint8) float64 {
	return float64(MaxControlValue-clamp(v, 0, MaxControlValue)) / MaxControlValue * MinGainDB
}
