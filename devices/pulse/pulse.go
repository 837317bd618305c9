// Package pulse exposes PulseAudio playback streams as bindable sessions.
//
// A session groups every sink input whose owning process has the same
// executable name. Sink inputs are looked up again on each call, so a player
// that recreates its stream between tracks stays controllable, and a session
// whose process has exited reports engine.ErrEndpointGone.
package pulse

import (
	"fmt"
	"log/slog"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"github.com/Porma/nk2-volume-controller/engine"
	"github.com/Porma/nk2-volume-controller/logging"
)

var sessionLog *slog.Logger

func init() {
	sessionLog = logging.Get(logging.SESSION)
}

const (
	// volumeNorm is the PulseAudio volume of 100%.
	volumeNorm = 0x10000

	propBinary = "application.process.binary"
)

// Requester issues raw protocol requests; *pulse.Client satisfies it.
type Requester interface {
	RawRequest(req proto.RequestArgs, rpl proto.Reply) error
}

// Provider lists sessions from a PulseAudio (or pipewire-pulse) server.
type Provider struct {
	c     Requester
	close func()
}

// Dial connects to the server. An empty server selects the default one.
func Dial(server, appName string) (*Provider, error) {
	opts := []pulse.ClientOption{pulse.ClientApplicationName(appName)}
	if server != "" {
		opts = append(opts, pulse.ClientServerString(server))
	}
	c, err := pulse.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to PulseAudio: %w", err)
	}
	sessionLog.Info("Connected to PulseAudio", "server", server)
	return &Provider{c: c, close: c.Close}, nil
}

// NewProvider wraps an existing connection.
func NewProvider(c Requester) *Provider {
	return &Provider{c: c}
}

func (p *Provider) Close() {
	if p.close != nil {
		p.close()
	}
}

func (p *Provider) sinkInputs() ([]*proto.GetSinkInputInfoReply, error) {
	var reply proto.GetSinkInputInfoListReply
	if err := p.c.RawRequest(&proto.GetSinkInputInfoList{}, &reply); err != nil {
		return nil, fmt.Errorf("list sink inputs: %w", err)
	}
	return reply, nil
}

func binaryOf(info *proto.GetSinkInputInfoReply) string {
	if e, ok := info.Properties[propBinary]; ok {
		return e.String()
	}
	return ""
}

// Sessions returns one session per distinct executable currently playing.
func (p *Provider) Sessions() ([]engine.SessionEndpoint, error) {
	inputs, err := p.sinkInputs()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []engine.SessionEndpoint
	for _, in := range inputs {
		name := binaryOf(in)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, &Session{p: p, name: name})
	}
	sessionLog.Debug("Listed sessions", "count", len(out))
	return out, nil
}

// Session is every sink input of one executable. It satisfies
// engine.SessionEndpoint.
type Session struct {
	p    *Provider
	name string
}

func (s *Session) Name() string {
	return s.name
}

// resolve returns the session's current sink inputs.
func (s *Session) resolve() ([]*proto.GetSinkInputInfoReply, error) {
	inputs, err := s.p.sinkInputs()
	if err != nil {
		return nil, err
	}
	var out []*proto.GetSinkInputInfoReply
	for _, in := range inputs {
		if binaryOf(in) == s.name {
			out = append(out, in)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("session %s: %w", s.name, engine.ErrEndpointGone)
	}
	return out, nil
}

// Volume is the average channel volume of the first sink input.
func (s *Session) Volume() (float64, error) {
	inputs, err := s.resolve()
	if err != nil {
		return 0, err
	}
	vols := inputs[0].ChannelVolumes
	if len(vols) == 0 {
		return 0, nil
	}
	var sum float64
	for _, v := range vols {
		sum += float64(v)
	}
	return sum / float64(len(vols)) / volumeNorm, nil
}

// SetVolume sets every channel of every sink input to fraction of 100%.
func (s *Session) SetVolume(fraction float64) error {
	inputs, err := s.resolve()
	if err != nil {
		return err
	}
	level := uint32(fraction*volumeNorm + 0.5)
	for _, in := range inputs {
		vols := make(proto.ChannelVolumes, len(in.ChannelVolumes))
		for i := range vols {
			vols[i] = level
		}
		req := &proto.SetSinkInputVolume{SinkInputIndex: in.SinkInputIndex, ChannelVolumes: vols}
		if err := s.p.c.RawRequest(req, nil); err != nil {
			return fmt.Errorf("set volume of sink input %d: %w", in.SinkInputIndex, err)
		}
	}
	return nil
}

// Mute reports whether every sink input is muted.
func (s *Session) Mute() (bool, error) {
	inputs, err := s.resolve()
	if err != nil {
		return false, err
	}
	for _, in := range inputs {
		if !in.Muted {
			return false, nil
		}
	}
	return true, nil
}

func (s *Session) SetMute(muted bool) error {
	inputs, err := s.resolve()
	if err != nil {
		return err
	}
	for _, in := range inputs {
		req := &proto.SetSinkInputMute{SinkInputIndex: in.SinkInputIndex, Mute: muted}
		if err := s.p.c.RawRequest(req, nil); err != nil {
			return fmt.Errorf("set mute of sink input %d: %w", in.SinkInputIndex, err)
		}
	}
	return nil
}
