package auth

import "os"

// EnvironmentStore reads the bearer token from the environment. It is the
// original deployment contract and stays first in the lookup order.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(token string) error {
	return ErrStoreUnavailable
}

// Retrieve gets the token from the environment
func (e *EnvironmentStore) Retrieve() (string, error) {
	token := os.Getenv(EnvTokenVar)
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// Exists checks if the environment token is set
func (e *EnvironmentStore) Exists() bool {
	return os.Getenv(EnvTokenVar) != ""
}

// Name identifies the backend
func (e *EnvironmentStore) Name() string {
	return "environment (" + EnvTokenVar + ")"
}
