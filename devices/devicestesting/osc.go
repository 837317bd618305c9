package devicestesting

import (
	"errors"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

// MockOscClient records every packet it is asked to send.
type MockOscClient struct {
	mu          sync.Mutex
	sent        []*osc.Message
	shouldError bool
}

func NewMockOscClient() *MockOscClient {
	return &MockOscClient{}
}

func (m *MockOscClient) Send(packet osc.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldError {
		return errors.New("mock send error")
	}
	switch p := packet.(type) {
	case *osc.Message:
		m.sent = append(m.sent, p)
	case *osc.Bundle:
		m.sent = append(m.sent, p.Messages...)
	}
	return nil
}

// GetSentMessages returns all messages that were sent
func (m *MockOscClient) GetSentMessages() []*osc.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*osc.Message, len(m.sent))
	copy(result, m.sent)
	return result
}

// SetError configures the mock to return errors
func (m *MockOscClient) SetError(shouldError bool) {
	m.mu.Lock()
	m.shouldError = shouldError
	m.mu.Unlock()
}
