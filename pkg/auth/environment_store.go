package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment
// variables. It is read-only and mainly serves one-off runs and CI.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	baseURL := os.Getenv("PLEXMIRROR_BASE_URL")
	token := os.Getenv("PLEXMIRROR_TOKEN")

	if baseURL == "" || token == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables carry no server name, so any requested name
	// resolves to the same entry
	if name == "" {
		name = "default"
	}

	return &Account{
		Name:         name,
		BaseURL:      baseURL,
		Token:        token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single server entry if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("PLEXMIRROR_BASE_URL") != "" && os.Getenv("PLEXMIRROR_TOKEN") != ""
}
