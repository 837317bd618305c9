package devices

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/Porma/nk2-volume-controller/engine"
	"github.com/Porma/nk2-volume-controller/logging"
)

var midiInLog, midiOutLog *slog.Logger

func init() {
	midiInLog = logging.Get(logging.MIDI_IN)
	midiOutLog = logging.Get(logging.MIDI_OUT)
}

const (
	// LightOn and LightOff are the Control Change values that drive a button LED.
	LightOn  uint8 = 127
	LightOff uint8 = 0

	DefaultQueueSize = 256
)

// MidiDevice is a control surface speaking Control Change on one MIDI channel.
//
// Incoming Control Changes are queued by the driver's listener and drained with
// Poll, so the consumer never blocks on input. Outgoing Control Changes drive
// the surface LEDs.
type MidiDevice struct {
	inPort  drivers.In
	outPort drivers.Out

	channel uint8
	events  chan engine.Event
	dropped atomic.Uint64

	mu   sync.Mutex
	stop func()
}

type Option func(*MidiDevice)

// WithChannel selects the MIDI channel (0-15) the surface uses.
func WithChannel(channel uint8) Option {
	return func(d *MidiDevice) { d.channel = channel }
}

// WithQueueSize bounds the number of events buffered between polls.
func WithQueueSize(n int) Option {
	return func(d *MidiDevice) {
		if n > 0 {
			d.events = make(chan engine.Event, n)
		}
	}
}

func NewMidiDevice(inPort drivers.In, outPort drivers.Out, opts ...Option) *MidiDevice {
	d := &MidiDevice{
		inPort:  inPort,
		outPort: outPort,
		events:  make(chan engine.Event, DefaultQueueSize),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Open opens both ports and starts listening. A device that cannot be opened
// is unusable, so callers should treat the error as fatal.
func (d *MidiDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}
	midiInLog.Info("Starting MIDI device", "inPort", d.inPort.String(), "outPort", d.outPort.String())
	if err := d.inPort.Open(); err != nil {
		return fmt.Errorf("open MIDI in port %q: %w", d.inPort.String(), err)
	}
	if err := d.outPort.Open(); err != nil {
		return errors.Join(
			fmt.Errorf("open MIDI out port %q: %w", d.outPort.String(), err),
			d.inPort.Close())
	}
	stop, err := midi.ListenTo(d.inPort, d.receive)
	if err != nil {
		return errors.Join(
			fmt.Errorf("listen on MIDI in port %q: %w", d.inPort.String(), err),
			d.inPort.Close(),
			d.outPort.Close())
	}
	d.stop = stop
	return nil
}

// Close stops listening and closes both ports.
func (d *MidiDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return nil
	}
	d.stop()
	d.stop = nil
	return errors.Join(d.inPort.Close(), d.outPort.Close())
}

func (d *MidiDevice) receive(msg midi.Message, timestampms int32) {
	var channel, control, value uint8
	if !msg.GetControlChange(&channel, &control, &value) {
		midiInLog.Debug("ignoring non Control Change message", "msg", msg.String(), "timestamp", timestampms)
		return
	}
	if channel != d.channel {
		midiInLog.Debug("ignoring Control Change on other channel", "channel", channel, "control", control)
		return
	}
	midiInLog.Debug("received Control Change message", "channel", channel, "control", control, "value", value, "timestamp", timestampms)
	ev := engine.Event{Control: control, Value: value, Edge: engine.EdgeFor(value)}
	select {
	case d.events <- ev:
	default:
		n := d.dropped.Add(1)
		midiInLog.Warn("event queue full, dropping Control Change", "control", control, "value", value, "dropped", n)
	}
}

// Poll returns the next queued event without blocking.
func (d *MidiDevice) Poll() (engine.Event, bool) {
	select {
	case ev := <-d.events:
		return ev, true
	default:
		return engine.Event{}, false
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (d *MidiDevice) Dropped() uint64 {
	return d.dropped.Load()
}

// Send writes a raw message to the output port.
func (d *MidiDevice) Send(msg midi.Message) error {
	return d.outPort.Send(msg)
}

// SetLight turns the LED of a button on or off.
func (d *MidiDevice) SetLight(control uint8, on bool) error {
	value := LightOff
	if on {
		value = LightOn
	}
	midiOutLog.Debug("Sending Control Change", "channel", d.channel, "controller", control, "value", value)
	if err := d.Send(midi.ControlChange(d.channel, control, value)); err != nil {
		return fmt.Errorf("set light %d: %w", control, err)
	}
	return nil
}
