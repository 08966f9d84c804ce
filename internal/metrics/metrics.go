package metrics

import "sync/atomic"

// MetricID identifies one counter slot.
type MetricID uint16

const (
	MetricSessionObtained MetricID = iota
	MetricSessionUpdated
	MetricAdditionalInfoAttached
	MetricAuthSessionInvalidated
	MetricUnauthSessionInvalidated
	MetricSessionsCleared
	MetricCredentialLookupMiss
	MetricPersistFailure
	MetricDecodeFailure
	MetricDuplicateUserSessions

	MetricIDCount
)

// Config controls metric collection. When Enabled is false every operation
// is a no-op.
type Config struct {
	Enabled bool
}

// Metrics holds atomic counters for session lifecycle operations. Increment
// is allocation-free; snapshots deep-copy.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time deep copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, int(MetricIDCount))}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
