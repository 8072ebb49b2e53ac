package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore stores the token in an AES-GCM encrypted file.
// The key is derived from a passphrase via PBKDF2.
type EncryptedFileStore struct {
	path       string
	passphrase []byte
}

// NewEncryptedFileStore creates an encrypted file store at the given path.
// The passphrase comes from DCBACKUP_PASSPHRASE, or a generated passphrase
// file alongside the token file.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	passphrase, err := getPassphrase(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{
		path:       path,
		passphrase: passphrase,
	}, nil
}

func (e *EncryptedFileStore) Store(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	encrypted, err := e.encrypt([]byte(token))
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := e.path + ".tmp"
	if err := os.WriteFile(tmpPath, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmpPath, e.path)
}

func (e *EncryptedFileStore) Retrieve() (string, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	decrypted, err := e.decrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return string(decrypted), nil
}

func (e *EncryptedFileStore) Delete() error {
	err := os.Remove(e.path)
	if os.IsNotExist(err) {
		return ErrTokenNotFound
	}
	return err
}

// encrypt produces salt || nonce || ciphertext
func (e *EncryptedFileStore) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

func (e *EncryptedFileStore) decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, errors.New("encrypted data too short")
	}

	salt := data[:saltSize]
	key := pbkdf2.Key(e.passphrase, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	rest := data[saltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, errors.New("encrypted data too short")
	}

	nonce := rest[:gcm.NonceSize()]
	ciphertext := rest[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertext, nil)
}

// getPassphrase returns the encryption passphrase from the environment,
// generating and persisting one in the config directory when unset
func getPassphrase(configDir string) ([]byte, error) {
	if pass := os.Getenv("DCBACKUP_PASSPHRASE"); pass != "" {
		return []byte(pass), nil
	}

	passFile := filepath.Join(configDir, ".passphrase")
	if data, err := os.ReadFile(passFile); err == nil && len(data) > 0 {
		return data, nil
	}

	passphrase := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, passphrase); err != nil {
		return nil, err
	}
	encoded := []byte(base64.StdEncoding.EncodeToString(passphrase))

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(passFile, encoded, 0600); err != nil {
		return nil, err
	}

	return encoded, nil
}
