// Package nanokontrol describes the factory setup of a Korg nanoKONTROL2.
//
// In its default scene the surface sends Control Change on MIDI channel 1 with
// faders on 0-7, solo ("select") buttons on 32-39 and mute buttons on 48-55.
// LEDs follow incoming Control Change once LED mode is set to External in the
// Korg Kontrol Editor.
package nanokontrol

import (
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/Porma/nk2-volume-controller/devices"
	"github.com/Porma/nk2-volume-controller/engine"
)

const (
	// PortName matches both the in and out ports of the surface.
	PortName = "nanoKONTROL2"
	// Channel is MIDI channel 1.
	Channel uint8 = 0
)

// Layout uses the first four strips as bindable lanes and the last four as
// the extension bank.
var Layout = engine.Layout{
	FaderBase:    0,
	ExtFaderBase: 4,
	SelectOffset: 32,
}

// New returns a device listening on the surface's channel.
func New(in drivers.In, out drivers.Out, opts ...devices.Option) *devices.MidiDevice {
	return devices.NewMidiDevice(in, out, append([]devices.Option{devices.WithChannel(Channel)}, opts...)...)
}
