package mocks

import (
	"context"
	"sync"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// MockCredentialStore implements domain.CredentialStore for testing.
// By default it behaves as a working in-memory store; individual
// operations can be overridden to inject storage faults.
type MockCredentialStore struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error
	ClearFunc  func(ctx context.Context) error

	mu     sync.Mutex
	values map[string]string
}

// NewMockCredentialStore creates a working in-memory credential store.
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{values: map[string]string{}}
}

// Get returns the stored value or domain.ErrCredentialsNotFound.
func (m *MockCredentialStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", domain.ErrCredentialsNotFound
	}
	return value, nil
}

// Set stores a value.
func (m *MockCredentialStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Remove deletes a key.
func (m *MockCredentialStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Clear deletes everything.
func (m *MockCredentialStore) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[string]string{}
	return nil
}

// Stored returns a copy of the backing map for assertions.
func (m *MockCredentialStore) Stored() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
