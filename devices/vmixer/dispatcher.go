package vmixer

import (
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// Handler receives a matched message together with the segments captured by
// the "@" wildcards of its pattern.
type Handler func(msg *osc.Message, captures []string)

type namedHandler struct {
	pattern string
	handler Handler
}

// Dispatcher is a custom osc.Dispatcher, implementing the osc.Dispatcher interface
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []namedHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: []namedHandler{}}
}

// AddMsgHandler registers handler for every address matching pattern. See
// MatchAddr for the pattern syntax.
func (s *Dispatcher) AddMsgHandler(pattern string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, namedHandler{pattern, handler})
}

// MatchAddr checks if messageAddr matches the path pattern.
// Each "@" in path acts as a wildcard for a segment, and captured segments are returned.
// If path ends with "*", any additional segments in messageAddr are ignored.
// "*" does not capture anything.
func MatchAddr(path, messageAddr string) (bool, []string) {
	pathSegs := strings.Split(path, "/")
	addrSegs := strings.Split(messageAddr, "/")

	endsWithStar := len(pathSegs) > 0 && pathSegs[len(pathSegs)-1] == "*"
	matchLen := len(pathSegs)
	if endsWithStar {
		// Remove the "*" for matching; allow extra segments in addrSegs
		matchLen--
		if len(addrSegs) < matchLen {
			return false, nil
		}
	} else if len(pathSegs) != len(addrSegs) {
		return false, nil
	}

	var captures []string
	for i := 0; i < matchLen; i++ {
		p := pathSegs[i]
		if p == "@" {
			captures = append(captures, addrSegs[i])
		} else if p != addrSegs[i] {
			return false, nil
		}
	}
	return true, captures
}

// Dispatch dispatches OSC packets. Implements the Dispatcher interface.
func (s *Dispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	default:
		return

	case *osc.Message:
		s.dispatchMessage(p)

	case *osc.Bundle:
		// Mixer feedback is state, not scheduled events; apply it on arrival.
		for _, m := range p.Messages {
			s.dispatchMessage(m)
		}
		for _, b := range p.Bundles {
			s.Dispatch(b)
		}
	}
}

func (s *Dispatcher) dispatchMessage(msg *osc.Message) {
	oscInLog.Debug("Osc message", "address", msg.Address, "arguments", msg.Arguments)
	s.mu.RLock()
	handlers := make([]namedHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.RUnlock()

	for _, h := range handlers {
		if match, captures := MatchAddr(h.pattern, msg.Address); match {
			h.handler(msg, captures)
		}
	}
}
