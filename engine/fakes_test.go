package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var testLayout = Layout{FaderBase: 0, ExtFaderBase: 4, SelectOffset: 32}

var errFlaky = errors.New("flaky")

type fakeSession struct {
	name   string
	volume float64
	muted  bool

	gone      bool
	err       error
	setCalls  int
	muteCalls int
}

func (s *fakeSession) Name() string { return s.name }

func (s *fakeSession) check() error {
	if s.gone {
		return fmt.Errorf("session %s: %w", s.name, ErrEndpointGone)
	}
	return s.err
}

func (s *fakeSession) Mute() (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	return s.muted, nil
}

func (s *fakeSession) SetMute(muted bool) error {
	s.muteCalls++
	if err := s.check(); err != nil {
		return err
	}
	s.muted = muted
	return nil
}

func (s *fakeSession) Volume() (float64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return s.volume, nil
}

func (s *fakeSession) SetVolume(v float64) error {
	s.setCalls++
	if err := s.check(); err != nil {
		return err
	}
	s.volume = v
	return nil
}

type fakeSessions struct {
	list []*fakeSession
	err  error
}

func (f *fakeSessions) Sessions() ([]SessionEndpoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]SessionEndpoint, 0, len(f.list))
	for _, s := range f.list {
		out = append(out, s)
	}
	return out, nil
}

type fakeForeground struct {
	exe string
	err error
}

func (f *fakeForeground) ActiveProcess() (string, error) {
	return f.exe, f.err
}

type fakeStrip struct {
	gain  float64
	muted bool

	// reported overrides what Mute returns, simulating a mixer whose state
	// changed behind the engine's back.
	reported *bool
	err      error
	calls    int
}

func (s *fakeStrip) Mute() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.reported != nil {
		return *s.reported, nil
	}
	return s.muted, nil
}

func (s *fakeStrip) SetMute(muted bool) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.muted = muted
	s.reported = nil
	return nil
}

func (s *fakeStrip) Gain() (float64, error) { return s.gain, s.err }

func (s *fakeStrip) SetGain(db float64) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.gain = db
	return nil
}

type lightCmd struct {
	control uint8
	on      bool
}

type fakeLights struct {
	cmds  []lightCmd
	state map[uint8]bool
	err   error
}

func newFakeLights() *fakeLights {
	return &fakeLights{state: map[uint8]bool{}}
}

func (l *fakeLights) SetLight(control uint8, on bool) error {
	if l.err != nil {
		return l.err
	}
	l.cmds = append(l.cmds, lightCmd{control, on})
	l.state[control] = on
	return nil
}

func (l *fakeLights) reset() {
	l.cmds = nil
}

type fakeSource struct {
	events  []Event
	polls   int
	onEmpty func()
}

func (s *fakeSource) Poll() (Event, bool) {
	s.polls++
	if len(s.events) == 0 {
		if s.onEmpty != nil {
			s.onEmpty()
		}
		return Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

type fixture struct {
	engine     *Engine
	sessions   *fakeSessions
	foreground *fakeForeground
	lights     *fakeLights
	strips     [Lanes]*fakeStrip
}

func newFixture(t *testing.T, sessions ...*fakeSession) *fixture {
	t.Helper()
	f := &fixture{
		sessions:   &fakeSessions{list: sessions},
		foreground: &fakeForeground{},
		lights:     newFakeLights(),
	}
	opts := Options{
		Layout:     testLayout,
		Sessions:   f.sessions,
		Foreground: f.foreground,
		Lights:     f.lights,
		IdlePoll:   -1,
	}
	for i := range f.strips {
		f.strips[i] = &fakeStrip{}
		opts.Channels[i] = f.strips[i]
	}
	e, err := New(opts)
	require.NoError(t, err)
	f.engine = e
	return f
}

func press(id uint8) Event   { return Event{Control: id, Value: 127, Edge: Press} }
func release(id uint8) Event { return Event{Control: id, Value: 0, Edge: Release} }
func move(id, v uint8) Event { return Event{Control: id, Value: v, Edge: EdgeFor(v)} }
