package engine

import "errors"

// ErrEndpointGone is returned (possibly wrapped) by endpoints whose target no
// longer exists, e.g. because the owning process exited.
var ErrEndpointGone = errors.New("endpoint gone")

// Edge is the press or release transition of a button.
type Edge uint8

const (
	Press Edge = iota
	Release
)

func (e Edge) String() string {
	switch e {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// EdgeFor derives the edge of a momentary button from its control value:
// the surface sends 127 on press and 0 on release.
func EdgeFor(value uint8) Edge {
	if value > 0 {
		return Press
	}
	return Release
}

// Event is one discrete control event read from the surface.
type Event struct {
	Control uint8
	Value   uint8
	Edge    Edge
}

// Muter is the capability shared by every endpoint.
type Muter interface {
	Mute() (bool, error)
	SetMute(muted bool) error
}

// SessionEndpoint is a per-process audio session, identified by the
// executable name of the process that owns it. Volume is a linear fraction in
// [0, 1].
type SessionEndpoint interface {
	Muter
	Name() string
	Volume() (float64, error)
	SetVolume(fraction float64) error
}

// ChannelEndpoint is a fixed strip of the virtual mixer. Gain is in decibels.
type ChannelEndpoint interface {
	Muter
	Gain() (float64, error)
	SetGain(db float64) error
}

// SessionProvider enumerates the bindable audio sessions.
type SessionProvider interface {
	Sessions() ([]SessionEndpoint, error)
}

// ForegroundQuery reports the executable name of the active foreground process.
type ForegroundQuery interface {
	ActiveProcess() (string, error)
}

// LightDriver sets the LED of a control on the surface.
type LightDriver interface {
	SetLight(control uint8, on bool) error
}

// EventSource yields control events without blocking. ok is false when no
// event is pending.
type EventSource interface {
	Poll() (ev Event, ok bool)
}
