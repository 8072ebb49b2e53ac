package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrTokenNotFound is returned when no token is stored
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidToken is returned for empty or malformed tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrStoreUnavailable is returned when a store cannot accept writes
	ErrStoreUnavailable = errors.New("store unavailable")
)

// TokenStore stores and retrieves the Discord user token
type TokenStore interface {
	// Store saves the token
	Store(token string) error

	// Retrieve gets the stored token
	Retrieve() (string, error)

	// Delete removes the stored token
	Delete() error
}

// Manager handles token storage with fallback mechanisms: the system
// keychain when available, an encrypted file otherwise, and environment
// variables as a read-only last resort.
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager with the available storage backends
func NewManager() (*Manager, error) {
	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "token.enc"))
	if err == nil {
		stores = append(stores, encryptedStore)
	}

	stores = append(stores, NewEnvironmentStore())

	if len(stores) == 0 {
		return nil, errors.New("no token storage backend available")
	}

	return &Manager{stores: stores}, nil
}

// Store saves the token in the first store that accepts it
func (m *Manager) Store(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(token); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("all token stores failed: %w", lastErr)
}

// Retrieve returns the token from the first store holding one
func (m *Manager) Retrieve() (string, error) {
	for _, store := range m.stores {
		token, err := store.Retrieve()
		if err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenNotFound
}

// Delete removes the token from every writable store
func (m *Manager) Delete() error {
	var lastErr error
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(); err != nil {
			if !errors.Is(err, ErrStoreUnavailable) && !errors.Is(err, ErrTokenNotFound) {
				lastErr = err
			}
			continue
		}
		deleted = true
	}

	if !deleted && lastErr != nil {
		return lastErr
	}
	return nil
}

// getConfigDir returns the directory for dcbackup's own files
func getConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dcbackup"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dcbackup"), nil
}
