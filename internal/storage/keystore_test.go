// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := NewKeystoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeystoreWithDir failed: %v", err)
	}
	return ks
}

func TestKeystoreRoundTrip(t *testing.T) {
	ks := newTestKeystore(t)

	if ks.Exists() {
		t.Error("fresh keystore should be empty")
	}
	if _, err := ks.Get(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Get on empty keystore = %v, want ErrNoAPIKey", err)
	}

	const apiKey = "sk-or-v1-abcdef0123456789"
	if err := ks.Set(apiKey); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !ks.Exists() {
		t.Error("Exists should be true after Set")
	}

	got, err := ks.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != apiKey {
		t.Errorf("Get = %q, want %q", got, apiKey)
	}
}

func TestKeystoreNotPlaintext(t *testing.T) {
	ks := newTestKeystore(t)
	const apiKey = "sk-or-v1-sensitive-material"
	if err := ks.Set(apiKey); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(ks.Dir, keystoreFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), apiKey) {
		t.Error("stored key file contains the key in plaintext")
	}
}

func TestKeystoreOverwrite(t *testing.T) {
	ks := newTestKeystore(t)
	if err := ks.Set("first-key"); err != nil {
		t.Fatal(err)
	}
	if err := ks.Set("second-key"); err != nil {
		t.Fatal(err)
	}
	got, err := ks.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got != "second-key" {
		t.Errorf("Get = %q, want %q", got, "second-key")
	}
}

func TestKeystoreClear(t *testing.T) {
	ks := newTestKeystore(t)
	if err := ks.Set("some-key"); err != nil {
		t.Fatal(err)
	}
	if err := ks.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if ks.Exists() {
		t.Error("keystore should be empty after Clear")
	}
	if err := ks.Clear(); err != nil {
		t.Errorf("Clear on empty keystore = %v, want nil", err)
	}
}

func TestKeystoreTamperDetection(t *testing.T) {
	ks := newTestKeystore(t)
	if err := ks.Set("tamper-me"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(ks.Dir, keystoreFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0xFF
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ks.Get(); err == nil {
		t.Error("Get should fail on tampered ciphertext")
	}
}
