package auth

import "os"

// EnvironmentStore reads the token from environment variables. It is
// read-only and always last in the manager's fallback chain.
type EnvironmentStore struct {
	vars []string
}

// NewEnvironmentStore creates an environment-backed token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{
		vars: []string{"DISCORD_TOKEN", "DCBACKUP_TOKEN"},
	}
}

func (e *EnvironmentStore) Store(token string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve() (string, error) {
	for _, name := range e.vars {
		if token := os.Getenv(name); token != "" {
			return token, nil
		}
	}
	return "", ErrTokenNotFound
}

func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}
