package mocks

import (
	"context"
	"sync"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// MockEventSink records published events for assertions.
type MockEventSink struct {
	mu     sync.Mutex
	events []*domain.Event
}

// NewMockEventSink creates a new MockEventSink.
func NewMockEventSink() *MockEventSink {
	return &MockEventSink{}
}

// Publish implements domain.EventSink.
func (m *MockEventSink) Publish(ctx context.Context, event *domain.Event) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

// Events returns the recorded events.
func (m *MockEventSink) Events() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the recorded event types, in order.
func (m *MockEventSink) Types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]domain.EventType, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}
