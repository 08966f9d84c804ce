package keychain

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertextInvalid is returned when a stored blob cannot be decrypted.
// Callers treat it like a decode failure: discard and start empty.
var ErrCiphertextInvalid = errors.New("keychain ciphertext invalid")

// SymmetricKeyProvider supplies the key used to seal persisted credential
// blobs. The provider is consulted on every operation so key rotation between
// calls takes effect without re-wiring.
type SymmetricKeyProvider interface {
	SymmetricKey() ([32]byte, error)
}

// StaticKeyProvider is a [SymmetricKeyProvider] returning a fixed key.
type StaticKeyProvider [32]byte

// SymmetricKey returns the fixed key.
func (p StaticKeyProvider) SymmetricKey() ([32]byte, error) {
	return [32]byte(p), nil
}

// EncryptedKeychain seals every value with AES-256-GCM before handing it to
// the inner [Keychain], and opens values on the way out. Keys and nonces
// never reach the inner store in the clear.
type EncryptedKeychain struct {
	inner Keychain
	keys  SymmetricKeyProvider
}

// NewEncryptedKeychain wraps inner with AES-GCM encryption.
func NewEncryptedKeychain(inner Keychain, keys SymmetricKeyProvider) (*EncryptedKeychain, error) {
	if inner == nil {
		return nil, errors.New("inner keychain required")
	}
	if keys == nil {
		return nil, errors.New("symmetric key provider required")
	}
	return &EncryptedKeychain{inner: inner, keys: keys}, nil
}

// Get fetches and decrypts the value for key. A blob sealed under a different
// key, or tampered with, yields [ErrCiphertextInvalid].
func (k *EncryptedKeychain) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := k.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	gcm, err := k.aead()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, ErrCiphertextInvalid
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertextInvalid, err)
	}
	return plain, nil
}

// Set encrypts value and stores nonce||ciphertext in the inner keychain.
// The entry key is bound as additional authenticated data, so a blob moved
// between keys fails to open.
func (k *EncryptedKeychain) Set(ctx context.Context, key string, value []byte) error {
	gcm, err := k.aead()
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	sealed := gcm.Seal(nonce, nonce, value, []byte(key))
	return k.inner.Set(ctx, key, sealed)
}

// Remove deletes the entry for key in the inner keychain.
func (k *EncryptedKeychain) Remove(ctx context.Context, key string) error {
	return k.inner.Remove(ctx, key)
}

func (k *EncryptedKeychain) aead() (cipher.AEAD, error) {
	key, err := k.keys.SymmetricKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
