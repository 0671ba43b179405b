package auth

import (
	"os"
	"time"

	"pixivcrawler/pkg/config"
)

// Environment variables read by EnvironmentStore
const (
	EnvCookie    = config.EnvPrefix + "COOKIE"
	EnvUserAgent = config.EnvPrefix + "USER_AGENT"
)

// EnvironmentStore is a read-only CredentialStore over PIXIVCRAWLER_COOKIE
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Profile) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment cookie under any requested name
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	cookie := os.Getenv(EnvCookie)
	if cookie == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = DefaultProfile
	}
	return &Profile{
		Name:         name,
		Cookie:       cookie,
		UserAgent:    os.Getenv(EnvUserAgent),
		LastModified: time.Time{},
	}, nil
}

// List returns the default profile when the cookie variable is set
func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve(DefaultProfile)
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if the cookie variable is set
func (e *EnvironmentStore) Exists(string) bool {
	return os.Getenv(EnvCookie) != ""
}
