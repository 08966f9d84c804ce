package authcore

import (
	"context"
	"log/slog"

	"github.com/lockpass/authcore/credential"
	internalaudit "github.com/lockpass/authcore/internal/audit"
	"github.com/lockpass/authcore/keychain"
)

// Builder assembles a [Manager]. The zero builder is not usable; start from
// [New].
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  keychain.Keychain
	keys   keychain.SymmetricKeyProvider
	module credential.Module
	logger *slog.Logger

	auditSink AuditSink

	built bool
}

// New creates a builder with default configuration for the host app module.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		module: credential.ModuleHostApp,
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithKeychain sets the secure store backing credential persistence.
func (b *Builder) WithKeychain(store keychain.Keychain) *Builder {
	b.store = store
	return b
}

// WithSymmetricKeyProvider wraps the keychain with AES-GCM encryption keyed
// by the provider. Use for backings that are not themselves trusted.
func (b *Builder) WithSymmetricKeyProvider(keys keychain.SymmetricKeyProvider) *Builder {
	b.keys = keys
	return b
}

// WithModule sets the app target this manager serves. Each target gets its
// own storage entry and in-memory table.
func (b *Builder) WithModule(module Module) *Builder {
	b.module = module
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit event sink. The dispatcher is only started
// when [AuditConfig.Enabled] is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, loads the persisted session table, and
// returns a ready [Manager]. A blob that fails to decode yields an empty
// table; with [StorageConfig.DiscardCorrupted] the wedged entry is removed.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrKeychainRequired
	}

	store := b.store
	if b.keys != nil {
		enc, err := keychain.NewEncryptedKeychain(store, b.keys)
		if err != nil {
			return nil, err
		}
		store = enc
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:     cfg,
		module:     b.module,
		storageKey: cfg.Storage.Key + ":" + b.module.String(),
		table:      credential.NewTable(),
		store:      store,
		logger:     logger.With("module", b.module.String()),
		feed:       newInvalidationFeed(cfg.Notify.InvalidationBuffer),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	m.loadPersisted(context.Background())

	b.built = true
	return m, nil
}
