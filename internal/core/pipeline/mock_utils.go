package pipeline

import "sync"

// MockTrigger records decompose triggers so tests can assert whether and for
// which itinerary the cascade fired its downstream call.
type MockTrigger struct {
	mu    sync.Mutex
	fired []string
	done  chan string
}

func NewMockTrigger() *MockTrigger {
	return &MockTrigger{done: make(chan string, 8)}
}

func (m *MockTrigger) TriggerDecompose(itineraryID string) {
	m.mu.Lock()
	m.fired = append(m.fired, itineraryID)
	m.mu.Unlock()
	m.done <- itineraryID
}

// Wait blocks until one trigger fires and returns its itinerary id.
func (m *MockTrigger) Wait() string {
	return <-m.done
}

func (m *MockTrigger) Fired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fired...)
}
