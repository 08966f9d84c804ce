package authcore

// Config defines session manager behavior.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Storage StorageConfig
	Notify  NotifyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls credential persistence.
type StorageConfig struct {
	// Key is the base secure-storage key; the module tag is appended so app
	// targets sharing a backing never collide.
	Key string

	// DiscardCorrupted removes an undecodable persisted blob at load time so
	// later writes are not blocked by a wedged entry.
	DiscardCorrupted bool
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig controls delegate and broadcast behavior.
type NotifyConfig struct {
	// OnObtain notifies the credentials delegate directly from
	// OnSessionObtaining. Off by default: existing flows notify on the
	// subsequent update or additional-info callback.
	OnObtain bool

	// InvalidationBuffer is the per-subscriber capacity of the invalidation
	// stream. Slow subscribers drop events rather than blocking lifecycle
	// callbacks.
	InvalidationBuffer int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process metric collection.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Key:              "authManagerStorageKey",
			DiscardCorrupted: true,
		},
		Notify: NotifyConfig{
			OnObtain:           false,
			InvalidationBuffer: 16,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; copy by value is a full clone.
	return cfg
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.Storage.Key == "" {
		return ErrStorageKeyEmpty
	}
	return nil
}
