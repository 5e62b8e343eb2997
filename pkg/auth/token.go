package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvTokenVar is the environment variable holding the app-only bearer token
const EnvTokenVar = "X_BEARER_TOKEN"

var (
	// ErrTokenNotFound is returned when no store holds a token
	ErrTokenNotFound = errors.New("bearer token not found")

	// ErrStoreUnavailable is returned by stores that cannot perform the
	// requested operation
	ErrStoreUnavailable = errors.New("token store unavailable")
)

// TokenStore is the interface for storing and retrieving the bearer token
type TokenStore interface {
	// Store saves the bearer token
	Store(token string) error

	// Retrieve gets the bearer token
	Retrieve() (string, error)

	// Delete removes the bearer token
	Delete() error

	// Exists checks if a token is stored
	Exists() bool

	// Name identifies the backend for status output
	Name() string
}

// Manager resolves the bearer token across storage backends with fallback.
// Lookup order: environment first (X_BEARER_TOKEN always wins), then
// the system keychain, then the encrypted file store. Writes go to the
// first writable backend.
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager with the available storage backends
func NewManager() (*Manager, error) {
	stores := []TokenStore{NewEnvironmentStore()}

	// Keychain when the system offers one
	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	// Encrypted file store as the durable fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "token.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit backend chain,
// used by tests
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the token using the first backend that accepts it
func (m *Manager) Store(token string) error {
	if token == "" {
		return errors.New("token is required")
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(token); err == nil {
			return nil
		} else if !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store token: %w", lastErr)
	}
	return errors.New("no writable token store available")
}

// Retrieve gets the token from the first backend that has one
func (m *Manager) Retrieve() (string, error) {
	for _, store := range m.stores {
		if token, err := store.Retrieve(); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenNotFound
}

// Source names the backend the token would currently be read from
func (m *Manager) Source() (string, error) {
	for _, store := range m.stores {
		if store.Exists() {
			return store.Name(), nil
		}
	}
	return "", ErrTokenNotFound
}

// Delete removes the token from every backend that holds it
func (m *Manager) Delete() error {
	found := false
	for _, store := range m.stores {
		if !store.Exists() {
			continue
		}
		if err := store.Delete(); err == nil {
			found = true
		} else if !errors.Is(err, ErrStoreUnavailable) {
			return err
		}
	}
	if !found {
		return ErrTokenNotFound
	}
	return nil
}

// getConfigDir returns the per-user config directory for xwatch
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, "xwatch")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}
