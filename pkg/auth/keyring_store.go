package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "dcbackup"
	keyringUser    = "discord_token"
)

// KeyringStore stores the token in the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed token store, probing the
// keychain first so the manager can fall back when no daemon is running
func NewKeyringStore() (*KeyringStore, error) {
	if _, err := keyring.Get(keyringService, "probe"); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrStoreUnavailable
	}
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return keyring.Set(keyringService, keyringUser, token)
}

func (k *KeyringStore) Retrieve() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return token, nil
}

func (k *KeyringStore) Delete() error {
	err := keyring.Delete(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
