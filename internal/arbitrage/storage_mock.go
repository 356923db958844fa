package arbitrage

import (
	"context"
	"sync"
)

// MockStorage is an in-memory sink for testing opportunity reporting.
// It lives in the arbitrage package to avoid import cycles.
type MockStorage struct {
	Opportunities []*Opportunity
	Err           error // returned from StoreOpportunity when set
	closed        bool
	mu            sync.Mutex
}

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Opportunities: make([]*Opportunity, 0),
	}
}

// StoreOpportunity records an opportunity in memory, then returns Err.
func (m *MockStorage) StoreOpportunity(ctx context.Context, opp *Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Opportunities = append(m.Opportunities, opp)
	return m.Err
}

// Close marks the storage closed.
func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockStorage) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetOpportunities returns all stored opportunities.
func (m *MockStorage) GetOpportunities() []*Opportunity {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*Opportunity, len(m.Opportunities))
	copy(result, m.Opportunities)
	return result
}

// Clear clears all stored opportunities.
func (m *MockStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Opportunities = make([]*Opportunity, 0)
}
