// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides on-disk persistence for chat sessions.
package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/rei-tui/internal/util"
)

const (
	keystoreFile = "key.enc"
	saltFile     = "key.salt"

	keystoreSaltSize   = 16
	keystoreKeySize    = 32 // AES-256
	keystoreIterations = 100_000
)

// ErrNoAPIKey is returned when no API key has been stored.
var ErrNoAPIKey = &SessionError{Message: "no API key stored"}

// Keystore holds the OpenRouter API key encrypted at rest with
// AES-256-GCM. The key is derived via PBKDF2 from a per-install random
// salt and local machine identity.
//
// SECURITY: This protects against casual disclosure (backups, file
// sharing), not against an attacker with code execution on the machine.
type Keystore struct {
	// Dir is the directory holding the key material.
	// Default: ~/.rei/
	Dir string
}

// NewKeystore creates a keystore at the default location.
func NewKeystore() (*Keystore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewKeystoreWithDir(filepath.Join(homeDir, ".rei"))
}

// NewKeystoreWithDir creates a keystore rooted at a custom directory.
func NewKeystoreWithDir(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &Keystore{Dir: dir}, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Set encrypts and stores the API key, generating a fresh salt.
func (k *Keystore) Set(apiKey string) error {
	salt := make([]byte, keystoreSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := k.cipherFor(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(apiKey), nil)

	if err := util.AtomicWriteFile(filepath.Join(k.Dir, saltFile), salt, 0600); err != nil {
		return fmt.Errorf("failed to save salt: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(k.Dir, keystoreFile), sealed, 0600); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	return nil
}

// Get decrypts and returns the stored API key.
func (k *Keystore) Get() (string, error) {
	salt, err := os.ReadFile(filepath.Join(k.Dir, saltFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoAPIKey
		}
		return "", err
	}
	sealed, err := os.ReadFile(filepath.Join(k.Dir, keystoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoAPIKey
		}
		return "", err
	}

	gcm, err := k.cipherFor(salt)
	if err != nil {
		return "", err
	}
	if len(sealed) < gcm.NonceSize() {
		return "", fmt.Errorf("stored key is truncated")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt stored key: %w", err)
	}
	return string(plain), nil
}

// Exists reports whether a key has been stored.
func (k *Keystore) Exists() bool {
	_, err := os.Stat(filepath.Join(k.Dir, keystoreFile))
	return err == nil
}

// Clear removes the stored key material.
func (k *Keystore) Clear() error {
	for _, name := range []string{keystoreFile, saltFile} {
		if err := os.Remove(filepath.Join(k.Dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// cipherFor builds the AES-GCM cipher for the given salt.
func (k *Keystore) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(machineSecret()), salt, keystoreIterations, keystoreKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}

// machineSecret derives a stable local passphrase from machine identity.
func machineSecret() string {
	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return "rei-tui:" + hostname + ":" + username
}
