package mode

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// Transition is run when a Machine moves between two distinct modes.
type Transition[M constraints.Integer] func(from, to M) error

// Machine holds the current mode of one piece of state and runs transition
// effects whenever that mode changes.
//
// Effects are run synchronously, in registration order, inside SetMode. A
// Machine is not safe for concurrent use; callers own the serialization.
type Machine[M constraints.Integer] struct {
	currMode M

	// Run on every change
	always []Transition[M]
	// Run only when entering the keyed mode
	entering map[M][]Transition[M]
}

func NewMachine[M constraints.Integer](startingMode M) *Machine[M] {
	return &Machine[M]{
		currMode: startingMode,
		entering: map[M][]Transition[M]{},
	}
}

// Mode returns the currently active mode.
func (m *Machine[M]) Mode() M {
	return m.currMode
}

// Is reports whether the current mode is any of the given modes.
func (m *Machine[M]) Is(modes ...M) bool {
	for _, mode := range modes {
		if m.currMode == mode {
			return true
		}
	}
	return false
}

// OnTransition registers an effect run on every mode change.
func (m *Machine[M]) OnTransition(effect Transition[M]) {
	m.always = append(m.always, effect)
}

// OnEnter registers an effect run only when the given mode becomes active.
func (m *Machine[M]) OnEnter(mode M, effect Transition[M]) {
	m.entering[mode] = append(m.entering[mode], effect)
}

// SetMode sets the currently active mode.
//
// If the new mode is the same as the current mode, nothing runs. Otherwise the
// mode is switched first and then every registered effect runs; all effects run
// even if some fail, and their errors are joined.
func (m *Machine[M]) SetMode(mode M) (errs error) {
	if m.currMode == mode {
		return nil
	}
	from := m.currMode
	m.currMode = mode
	for _, e := range m.always {
		errs = errors.Join(errs, e(from, mode))
	}
	for _, e := range m.entering[mode] {
		errs = errors.Join(errs, e(from, mode))
	}
	return errs
}
