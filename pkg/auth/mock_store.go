package auth

import "sync"

// MockStore is an in-memory TokenStore for tests
type MockStore struct {
	mu       sync.Mutex
	token    string
	readOnly bool
	name     string
}

// NewMockStore creates an empty in-memory store
func NewMockStore(name string) *MockStore {
	return &MockStore{name: name}
}

// NewReadOnlyMockStore creates a store that rejects writes, like the
// environment backend
func NewReadOnlyMockStore(name, token string) *MockStore {
	return &MockStore{name: name, token: token, readOnly: true}
}

// Store saves the token in memory
func (m *MockStore) Store(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return ErrStoreUnavailable
	}
	m.token = token
	return nil
}

// Retrieve returns the in-memory token
func (m *MockStore) Retrieve() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

// Delete clears the in-memory token
func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return ErrStoreUnavailable
	}
	if m.token == "" {
		return ErrTokenNotFound
	}
	m.token = ""
	return nil
}

// Exists checks if a token is held
func (m *MockStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// Name identifies the backend
func (m *MockStore) Name() string {
	return m.name
}
