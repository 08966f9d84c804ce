package keychain

import (
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	minDeriveMemoryKB uint32 = 8 * 1024
	minDeriveTime     uint32 = 1
	minDeriveThreads  uint8  = 1
	minDeriveSaltLen         = 16
	derivedKeyLength  uint32 = 32
)

// DeriveConfig holds argon2id parameters for passphrase key derivation.
type DeriveConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

// DefaultDeriveConfig returns interactive-login argon2id parameters.
func DefaultDeriveConfig() DeriveConfig {
	return DeriveConfig{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
	}
}

// PassphraseKeyProvider derives a symmetric key from a user passphrase with
// argon2id. Derivation happens once at construction; the provider then serves
// the cached key.
type PassphraseKeyProvider struct {
	key [32]byte
}

// NewPassphraseKeyProvider derives a [SymmetricKeyProvider] key from
// passphrase and salt. The salt must be stable across restarts or previously
// sealed blobs become unreadable.
func NewPassphraseKeyProvider(passphrase string, salt []byte, cfg DeriveConfig) (*PassphraseKeyProvider, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase required")
	}
	if len(salt) < minDeriveSaltLen {
		return nil, errors.New("salt too short")
	}
	if cfg.Memory < minDeriveMemoryKB {
		return nil, errors.New("argon2 memory below minimum")
	}
	if cfg.Time < minDeriveTime {
		return nil, errors.New("argon2 time cost below minimum")
	}
	if cfg.Parallelism < minDeriveThreads {
		return nil, errors.New("argon2 parallelism below minimum")
	}

	raw := argon2.IDKey([]byte(passphrase), salt, cfg.Time, cfg.Memory, cfg.Parallelism, derivedKeyLength)

	p := &PassphraseKeyProvider{}
	copy(p.key[:], raw)
	return p, nil
}

// SymmetricKey returns the derived key.
func (p *PassphraseKeyProvider) SymmetricKey() ([32]byte, error) {
	return p.key, nil
}
