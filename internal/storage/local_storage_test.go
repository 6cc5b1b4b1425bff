package storage

import (
	"context"
	"strings"
	"testing"
)

func TestLocalStorageSaveLoadRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating storage: %v", err)
	}

	payload := []byte(`{"accounts":[],"books":[]}`)
	key, err := store.Save(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
	if !strings.HasPrefix(key, "backups/") {
		t.Fatalf("expected key under backups/, got %q", key)
	}
	if !strings.HasSuffix(key, ".json") {
		t.Fatalf("expected .json key, got %q", key)
	}

	loaded, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if string(loaded) != string(payload) {
		t.Fatalf("payload mismatch: %q", loaded)
	}
}

func TestLocalStorageRejectsEmptyPayload(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating storage: %v", err)
	}
	if _, err := store.Save(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestLocalStorageRejectsTraversalKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating storage: %v", err)
	}

	for _, key := range []string{
		"../etc/passwd",
		"backups/../../etc/passwd",
		"/etc/passwd",
		"other/2026/01/01/backup-1.json",
		"",
	} {
		if _, err := store.Load(context.Background(), key); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}

func TestValidArchiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"backups/2026/08/31/backup-1.json", true},
		{"backups/x.json", true},
		{"backups/../secrets.json", false},
		{"../backups/x.json", false},
		{"notbackups/x.json", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := validArchiveKey(tt.key); got != tt.want {
			t.Errorf("validArchiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
