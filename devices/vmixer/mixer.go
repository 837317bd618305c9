// Package vmixer drives the strips of a virtual mixing application over OSC.
//
// Gain and mute are sent to per-strip addresses built from templates such as
// "/Strip/%d/Gain". The mixer echoes state changes to the same addresses; when
// a feedback listener is running those echoes keep each strip's cached state
// in step with the mixer, including changes made on the mixer itself.
package vmixer

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/Porma/nk2-volume-controller/logging"
)

var oscInLog, oscOutLog *slog.Logger

func init() {
	oscInLog = logging.Get(logging.OSC_IN)
	oscOutLog = logging.Get(logging.OSC_OUT)
}

const (
	DefaultGainAddr = "/Strip/%d/Gain"
	DefaultMuteAddr = "/Strip/%d/Mute"
)

// Sender is the sending half of an OSC client; *osc.Client satisfies it.
type Sender interface {
	Send(packet osc.Packet) error
}

// Config holds the address templates of the mixer. Each template contains a
// single "%d" which is replaced by the strip index.
type Config struct {
	GainAddr string
	MuteAddr string
}

// ValidateTemplate checks that an address template has exactly one "%d" and
// that it fills a whole path segment, since feedback is matched per segment.
func ValidateTemplate(template string) error {
	if !strings.HasPrefix(template, "/") {
		return fmt.Errorf("address template %q must start with /", template)
	}
	if strings.Count(template, "%d") != 1 || strings.Count(template, "%") != 1 {
		return fmt.Errorf("address template %q must contain exactly one %%d", template)
	}
	for _, seg := range strings.Split(template, "/") {
		if strings.Contains(seg, "%d") && seg != "%d" {
			return fmt.Errorf("address template %q: %%d must be a whole path segment, not part of %q", template, seg)
		}
	}
	return nil
}

// Pattern turns an address template into a dispatcher pattern capturing the
// strip index.
func Pattern(template string) string {
	return strings.Replace(template, "%d", "@", 1)
}

type Mixer struct {
	client     Sender
	cfg        Config
	dispatcher *Dispatcher

	mu     sync.Mutex
	strips map[int]*Strip
}

func New(client Sender, cfg Config) *Mixer {
	if cfg.GainAddr == "" {
		cfg.GainAddr = DefaultGainAddr
	}
	if cfg.MuteAddr == "" {
		cfg.MuteAddr = DefaultMuteAddr
	}
	m := &Mixer{
		client:     client,
		cfg:        cfg,
		dispatcher: NewDispatcher(),
		strips:     map[int]*Strip{},
	}
	m.dispatcher.AddMsgHandler(Pattern(cfg.GainAddr), m.handleGain)
	m.dispatcher.AddMsgHandler(Pattern(cfg.MuteAddr), m.handleMute)
	return m
}

// Strip returns the strip with the given index, creating it on first use.
func (m *Mixer) Strip(index int) *Strip {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strips[index]
	if !ok {
		s = &Strip{
			mixer:    m,
			index:    index,
			gainAddr: fmt.Sprintf(m.cfg.GainAddr, index),
			muteAddr: fmt.Sprintf(m.cfg.MuteAddr, index),
		}
		m.strips[index] = s
	}
	return s
}

func (m *Mixer) lookup(captures []string) (*Strip, bool) {
	if len(captures) != 1 {
		return nil, false
	}
	index, err := strconv.Atoi(captures[0])
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strips[index]
	return s, ok
}

func (m *Mixer) handleGain(msg *osc.Message, captures []string) {
	s, ok := m.lookup(captures)
	if !ok {
		return
	}
	db, ok := floatArg(msg)
	if !ok {
		oscInLog.Warn("Unusable gain feedback", "address", msg.Address, "arguments", msg.Arguments)
		return
	}
	s.observeGain(db)
}

func (m *Mixer) handleMute(msg *osc.Message, captures []string) {
	s, ok := m.lookup(captures)
	if !ok {
		return
	}
	muted, ok := boolArg(msg)
	if !ok {
		oscInLog.Warn("Unusable mute feedback", "address", msg.Address, "arguments", msg.Arguments)
		return
	}
	s.observeMute(muted)
}

// Dispatcher returns the dispatcher that applies mixer feedback.
func (m *Mixer) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Listen binds the feedback address and serves it in the background. Failing
// to bind is returned so startup can abort; close the returned connection to
// stop serving.
func (m *Mixer) Listen(addr string) (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for mixer feedback on %s: %w", addr, err)
	}
	server := &osc.Server{Addr: addr, Dispatcher: m.dispatcher}
	oscInLog.Info("Listening for mixer feedback", "addr", conn.LocalAddr().String())
	go func() {
		if err := server.Serve(conn); err != nil {
			oscInLog.Info("Mixer feedback listener stopped", "err", err)
		}
	}()
	return conn, nil
}

func (m *Mixer) send(msg *osc.Message) error {
	oscOutLog.Debug("Sending OSC message", "address", msg.Address, "arguments", msg.Arguments)
	if err := m.client.Send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Address, err)
	}
	return nil
}

// floatArg reads the last argument of msg as a float.
func floatArg(msg *osc.Message) (float64, bool) {
	if len(msg.Arguments) == 0 {
		return 0, false
	}
	switch v := msg.Arguments[len(msg.Arguments)-1].(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// boolArg reads the last argument of msg as a flag; numbers are true when
// positive.
func boolArg(msg *osc.Message) (bool, bool) {
	if len(msg.Arguments) == 0 {
		return false, false
	}
	switch v := msg.Arguments[len(msg.Arguments)-1].(type) {
	case bool:
		return v, true
	case int32:
		return v > 0, true
	case int64:
		return v > 0, true
	case float32:
		return v > 0, true
	case float64:
		return v > 0, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}
