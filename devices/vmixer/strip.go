package vmixer

import (
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// Strip is one channel of the virtual mixer. It satisfies
// engine.ChannelEndpoint.
//
// Gain and Mute report the last state sent to or echoed by the mixer.
type Strip struct {
	mixer    *Mixer
	index    int
	gainAddr string
	muteAddr string

	mu    sync.Mutex
	gain  float64
	muted bool
}

func (s *Strip) Index() int {
	return s.index
}

func (s *Strip) Gain() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain, nil
}

func (s *Strip) SetGain(db float64) error {
	if err := s.mixer.send(osc.NewMessage(s.gainAddr, float32(db))); err != nil {
		return err
	}
	s.observeGain(db)
	return nil
}

func (s *Strip) Mute() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted, nil
}

func (s *Strip) SetMute(muted bool) error {
	var v int32
	if muted {
		v = 1
	}
	if err := s.mixer.send(osc.NewMessage(s.muteAddr, v)); err != nil {
		return err
	}
	s.observeMute(muted)
	return nil
}

func (s *Strip) observeGain(db float64) {
	s.mu.Lock()
	s.gain = db
	s.mu.Unlock()
}

func (s *Strip) observeMute(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}
