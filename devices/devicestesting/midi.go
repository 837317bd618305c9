package devicestesting

import (
	"errors"
	"sync"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// MockMIDIPort implements both drivers.In and drivers.Out interfaces
type MockMIDIPort struct {
	mu sync.Mutex

	name string

	// For tracking sent messages
	sentMessages []midi.Message

	// For simulating received messages
	listeners map[int]func(msg []byte, milliseconds int32)
	nextID    int

	// For testing error conditions
	shouldError bool
	openError   error
	closeError  error

	isOpen bool
}

func NewMockMIDIPort() *MockMIDIPort {
	return NewNamedMockMIDIPort("MockMIDIPort")
}

func NewNamedMockMIDIPort(name string) *MockMIDIPort {
	return &MockMIDIPort{
		name:         name,
		sentMessages: make([]midi.Message, 0),
		listeners:    map[int]func(msg []byte, milliseconds int32){},
	}
}

var (
	_ drivers.In  = (*MockMIDIPort)(nil)
	_ drivers.Out = (*MockMIDIPort)(nil)
)

func (m *MockMIDIPort) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openError != nil {
		return m.openError
	}
	m.isOpen = true
	return nil
}

func (m *MockMIDIPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isOpen = false
	return m.closeError
}

func (m *MockMIDIPort) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isOpen
}

// Number implements drivers.Out and drivers.In
func (m *MockMIDIPort) Number() int {
	return 0
}

// String implements drivers.Out and drivers.In
func (m *MockMIDIPort) String() string {
	return m.name
}

func (m *MockMIDIPort) Underlying() interface{} {
	return m
}

// Send implements drivers.Out
func (m *MockMIDIPort) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock send error")
	}
	m.sentMessages = append(m.sentMessages, midi.Message(append([]byte(nil), data...)))
	return nil
}

// Listen implements drivers.In
func (m *MockMIDIPort) Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (stopFn func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isOpen {
		return nil, errors.New("port not open")
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = onMsg
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}, nil
}

// SimulateReceive simulates receiving a MIDI message
func (m *MockMIDIPort) SimulateReceive(msg midi.Message) {
	m.mu.Lock()
	listeners := make([]func(msg []byte, milliseconds int32), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, listener := range listeners {
		listener(msg, 0) // timestamp 0 for simplicity
	}
}

// Listening reports how many listeners are attached.
func (m *MockMIDIPort) Listening() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

// GetSentMessages returns all messages that were sent
func (m *MockMIDIPort) GetSentMessages() []midi.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]midi.Message, len(m.sentMessages))
	copy(result, m.sentMessages)
	return result
}

// SetError configures the mock to return errors
func (m *MockMIDIPort) SetError(shouldError bool) {
	m.mu.Lock()
	m.shouldError = shouldError
	m.mu.Unlock()
}

// SetOpenError makes Open fail with err.
func (m *MockMIDIPort) SetOpenError(err error) {
	m.mu.Lock()
	m.openError = err
	m.mu.Unlock()
}

// SetCloseError makes Close return err after closing.
func (m *MockMIDIPort) SetCloseError(err error) {
	m.mu.Lock()
	m.closeError = err
	m.mu.Unlock()
}
