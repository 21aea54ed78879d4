package mqtt

import (
	"fmt"
	"sync"

	"github.com/evmobility/urbanev/core/events"
)

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Events   []events.SessionEvent
	FailNext bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishSessionEvent records the event or returns an error if configured
// to fail.
func (m *MockPublisher) PublishSessionEvent(ev events.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return fmt.Errorf("publish failed")
	}
	m.Events = append(m.Events, ev)
	return nil
}

// Published returns a copy of all recorded events.
func (m *MockPublisher) Published() []events.SessionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.SessionEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// Disconnect is a no-op.
func (m *MockPublisher) Disconnect() {}
