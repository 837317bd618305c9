package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Porma/nk2-volume-controller/logging"
)

var engineLog, sessionLog *slog.Logger

func init() {
	engineLog = logging.Get(logging.ENGINE)
	sessionLog = logging.Get(logging.SESSION)
}

// DefaultIdlePoll is how long Run waits after an empty poll.
const DefaultIdlePoll = time.Millisecond

// Options wires an Engine to its collaborators.
type Options struct {
	Layout     Layout
	Sessions   SessionProvider
	Foreground ForegroundQuery
	Lights     LightDriver
	// Channels are the virtual mixer strips of the extension lanes, in lane order.
	Channels [Lanes]ChannelEndpoint
	// IdlePoll is the wait after an empty poll. Zero means DefaultIdlePoll;
	// negative means spin without waiting.
	IdlePoll time.Duration
}

// Engine maps surface events onto bound endpoints and keeps the surface
// lights in step with its state.
//
// All state is owned by the goroutine calling Handle or Run; only Stop and
// Running may be called from elsewhere.
type Engine struct {
	layout     Layout
	sessions   SessionProvider
	foreground ForegroundQuery
	lights     LightDriver

	groups     [Lanes]*controlGroup
	extensions [Lanes]*extensionChannel

	idlePoll time.Duration
	running  atomic.Bool
}

// New builds an Engine with every main lane unbound.
func New(opts Options) (*Engine, error) {
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if opts.Sessions == nil {
		return nil, errors.New("engine: no session provider")
	}
	if opts.Foreground == nil {
		return nil, errors.New("engine: no foreground query")
	}
	if opts.Lights == nil {
		return nil, errors.New("engine: no light driver")
	}
	e := &Engine{
		layout:     opts.Layout,
		sessions:   opts.Sessions,
		foreground: opts.Foreground,
		lights:     opts.Lights,
		idlePoll:   opts.IdlePoll,
	}
	if e.idlePoll == 0 {
		e.idlePoll = DefaultIdlePoll
	}
	for lane := 0; lane < Lanes; lane++ {
		if opts.Channels[lane] == nil {
			return nil, fmt.Errorf("engine: no mixer strip for extension lane %d", lane)
		}
		e.groups[lane] = newControlGroup(lane, opts.Layout, opts.Lights)
		e.extensions[lane] = newExtensionChannel(lane, opts.Layout, opts.Channels[lane], opts.Lights)
	}
	e.running.Store(true)
	return e, nil
}

// ResetLights turns off every select and mute LED of both banks, then lights
// the extension mutes whose strips are already muted. Every failure is
// reported.
func (e *Engine) ResetLights() (errs error) {
	for _, id := range e.layout.LightIDs() {
		if err := e.lights.SetLight(id, false); err != nil {
			errs = errors.Join(errs, fmt.Errorf("reset light %d: %w", id, err))
		}
	}
	for _, c := range e.extensions {
		if err := c.sync(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("sync extension lane %d: %w", c.lane, err))
		}
	}
	return errs
}

// Handle processes one event to completion. Unrecognized controls and
// release edges of buttons are ignored.
func (e *Engine) Handle(ev Event) {
	cat, lane := e.layout.Classify(ev.Control)
	switch cat {
	case Select:
		if ev.Edge == Press {
			e.groups[lane].toggleBinding(e.sessions, e.foreground)
		}
	case Mute:
		if ev.Edge == Press {
			e.groups[lane].toggleMute()
		}
	case Fader:
		e.groups[lane].setVolume(ev.Value)
	case ExtFader:
		e.extensions[lane].setGain(ev.Value)
	case ExtMute:
		if ev.Edge == Press {
			e.extensions[lane].toggleMute()
		}
	default:
		engineLog.Debug("Dropped unrecognized control", "control", ev.Control, "value", ev.Value)
	}
}

// Run polls src and handles each event until Stop is called. An empty poll
// waits for the idle interval before polling again. Run may be called again
// after it returns.
func (e *Engine) Run(src EventSource) {
	e.running.Store(true)
	engineLog.Info("Engine running")
	for e.running.Load() {
		ev, ok := src.Poll()
		if !ok {
			if e.idlePoll > 0 {
				time.Sleep(e.idlePoll)
			}
			continue
		}
		e.Handle(ev)
	}
	engineLog.Info("Engine stopped")
}

// Stop makes Run return after the event in progress.
func (e *Engine) Stop() {
	e.running.Store(false)
}

func (e *Engine) Running() bool {
	return e.running.Load()
}

// GroupState is a snapshot of a main lane.
type GroupState struct {
	Lane     int
	State    LaneState
	Endpoint string // empty while unbound
	Muted    bool
}

// Group returns a snapshot of the given main lane.
func (e *Engine) Group(lane int) GroupState {
	g := e.groups[lane]
	s := GroupState{Lane: lane, State: g.state.Mode(), Muted: g.muted}
	if g.endpoint != nil {
		s.Endpoint = g.endpoint.Name()
	}
	return s
}

// ExtensionState is a snapshot of an extension lane.
type ExtensionState struct {
	Lane  int
	Muted bool
}

// Extension returns a snapshot of the given extension lane.
func (e *Engine) Extension(lane int) ExtensionState {
	return ExtensionState{Lane: lane, Muted: e.extensions[lane].muted}
}
