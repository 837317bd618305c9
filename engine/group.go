package engine

import (
	"errors"

	"github.com/Porma/nk2-volume-controller/mode"
)

// LaneState is the binding state of a ControlGroup.
type LaneState uint8

const (
	Unbound LaneState = iota
	Bound
	BoundMuted
)

func (s LaneState) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case BoundMuted:
		return "bound_muted"
	default:
		return "unknown"
	}
}

func boundState(muted bool) LaneState {
	if muted {
		return BoundMuted
	}
	return Bound
}

// controlGroup is one main lane: a fader, a select and a mute button bound to
// at most one session endpoint.
type controlGroup struct {
	lane     int
	faderID  uint8
	selectID uint8
	muteID   uint8

	endpoint SessionEndpoint
	muted    bool

	state  *mode.Machine[LaneState]
	lights LightDriver
}

func newControlGroup(lane int, layout Layout, lights LightDriver) *controlGroup {
	g := &controlGroup{
		lane:     lane,
		faderID:  layout.ID(Fader, lane),
		selectID: layout.ID(Select, lane),
		muteID:   layout.ID(Mute, lane),
		state:    mode.NewMachine(Unbound),
		lights:   lights,
	}
	g.state.OnTransition(g.pushLights)
	g.state.OnEnter(Unbound, g.clearLights)
	return g
}

func (g *controlGroup) bound() bool {
	return g.state.Is(Bound, BoundMuted)
}

// clearLights turns off both LEDs of the lane.
func (g *controlGroup) clearLights(_, _ LaneState) error {
	return errors.Join(
		g.lights.SetLight(g.selectID, false),
		g.lights.SetLight(g.muteID, false))
}

// pushLights keeps the select LED lit while bound and the mute LED lit while
// muted.
func (g *controlGroup) pushLights(from, to LaneState) (errs error) {
	if to == Unbound {
		return nil
	}
	if from == Unbound {
		errs = errors.Join(errs, g.lights.SetLight(g.selectID, true))
	}
	if wasMuted, isMuted := from == BoundMuted, to == BoundMuted; wasMuted != isMuted {
		errs = errors.Join(errs, g.lights.SetLight(g.muteID, isMuted))
	}
	return errs
}

func (g *controlGroup) transition(to LaneState) {
	if err := g.state.SetMode(to); err != nil {
		engineLog.Warn("Failed to update lane lights", "lane", g.lane, "state", to, "err", err)
	}
}

// toggleBinding unbinds a bound lane, or binds an unbound lane to the session
// of the foreground process. Finding nothing to bind is not an error.
func (g *controlGroup) toggleBinding(sessions SessionProvider, fg ForegroundQuery) {
	if g.bound() {
		engineLog.Info("Unbound session from lane", "process", g.endpoint.Name(), "lane", g.lane)
		g.unbind()
		return
	}

	exe, err := fg.ActiveProcess()
	if err != nil {
		sessionLog.Debug("Failed to query foreground process", "err", err)
		return
	}
	ep, err := findSession(sessions, exe)
	if err != nil {
		sessionLog.Debug("Failed to enumerate sessions", "err", err)
		return
	}
	if ep == nil {
		sessionLog.Debug("No session for foreground process", "process", exe)
		return
	}
	muted, err := ep.Mute()
	if err != nil {
		sessionLog.Debug("Failed to read session mute state", "process", exe, "err", err)
		return
	}

	g.endpoint = ep
	g.muted = muted
	g.transition(boundState(muted))
	engineLog.Info("Bound session to lane", "process", exe, "lane", g.lane, "fader", g.faderID, "muted", muted)
}

func (g *controlGroup) unbind() {
	g.endpoint = nil
	g.muted = false
	g.transition(Unbound)
}

func (g *controlGroup) toggleMute() {
	if !g.bound() {
		return
	}
	want := !g.muted
	if err := g.endpoint.SetMute(want); err != nil {
		g.fail("mute", err)
		return
	}
	g.muted = want
	g.transition(boundState(want))
	engineLog.Debug("Toggled session mute", "process", g.endpoint.Name(), "lane", g.lane, "muted", want)
}

func (g *controlGroup) setVolume(v uint8) {
	if !g.bound() {
		return
	}
	vol := FaderToVolume(v)
	if err := g.endpoint.SetVolume(vol); err != nil {
		g.fail("volume", err)
		return
	}
	engineLog.Debug("Set session volume", "process", g.endpoint.Name(), "lane", g.lane, "volume", vol)
}

// fail handles an endpoint error. A vanished endpoint unbinds the lane; any
// other error leaves state untouched so the user can repeat the action.
func (g *controlGroup) fail(op string, err error) {
	if errors.Is(err, ErrEndpointGone) {
		engineLog.Info("Bound session is gone, unbinding lane", "process", g.endpoint.Name(), "lane", g.lane, "op", op)
		g.unbind()
		return
	}
	engineLog.Warn("Session command failed", "process", g.endpoint.Name(), "lane", g.lane, "op", op, "err", err)
}

func findSession(sessions SessionProvider, exe string) (SessionEndpoint, error) {
	all, err := sessions.Sessions()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Name() == exe {
			return s, nil
		}
	}
	return nil, nil
}
