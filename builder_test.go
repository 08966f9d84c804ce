package authcore

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lockpass/authcore/keychain"
)

func TestBuildRequiresKeychain(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrKeychainRequired) {
		t.Fatalf("expected ErrKeychainRequired, got %v", err)
	}
}

func TestBuildRejectsEmptyStorageKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Key = ""

	_, err := New().
		WithConfig(cfg).
		WithKeychain(keychain.NewMemoryKeychain()).
		Build()
	if !errors.Is(err, ErrStorageKeyEmpty) {
		t.Fatalf("expected ErrStorageKeyEmpty, got %v", err)
	}
}

func TestBuildRejectsReuse(t *testing.T) {
	b := New().
		WithKeychain(keychain.NewMemoryKeychain()).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	mgr, err := b.Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	defer mgr.Close()

	if _, err := b.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}

func TestBuildIsolatesModules(t *testing.T) {
	store := keychain.NewMemoryKeychain()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	host, err := New().WithKeychain(store).WithLogger(logger).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer host.Close()

	autofill, err := New().
		WithKeychain(store).
		WithLogger(logger).
		WithModule(ModuleAutoFillExtension).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer autofill.Close()

	host.OnSessionObtaining(testCredential("s1", "u1"))

	if autofill.Credential("s1") != nil {
		t.Fatal("expected module tables isolated on a shared backing")
	}
	if host.Credential("s1") == nil {
		t.Fatal("expected host app session present")
	}
}
