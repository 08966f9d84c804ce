package authcore

import (
	"io"

	"github.com/lockpass/authcore/credential"
	internalaudit "github.com/lockpass/authcore/internal/audit"
	internalmetrics "github.com/lockpass/authcore/internal/metrics"
)

// Module identifies the logical app target sharing the persistence backing.
type Module = credential.Module

const (
	// ModuleHostApp is the main application target.
	ModuleHostApp = credential.ModuleHostApp
	// ModuleAutoFillExtension is the credential autofill extension target.
	ModuleAutoFillExtension = credential.ModuleAutoFillExtension
	// ModuleShareExtension is the share-sheet extension target.
	ModuleShareExtension = credential.ModuleShareExtension
	// ModuleActionExtension is the action extension target.
	ModuleActionExtension = credential.ModuleActionExtension
)

// Credential is the wire-level token record attached to a session, as
// delivered by the transport layer on login, refresh, and unauth bootstrap.
type Credential struct {
	SessionID    string
	AccessToken  string
	RefreshToken string
	UserName     string
	UserID       string
	Scopes       []string

	MailboxPassword string

	// CredentialLess marks a session obtained before user login.
	CredentialLess bool
}

// AuthCredential is a [Credential] plus the locally derived secret material
// (password key salt, private key) that never travels over the wire.
type AuthCredential struct {
	Credential

	PasswordKeySalt string
	PrivateKey      string
}

// Authenticated reports whether the credential belongs to a logged-in user.
func (c Credential) Authenticated() bool {
	return c.UserID != "" && !c.CredentialLess
}

// CredentialsDelegate is the transport-layer observer. It is told after
// every credential change so per-session API clients can re-point their
// cached tokens, and on invalidation so they can tear down.
//
// Callbacks run while the manager holds its serialization lock; delegates
// must not call back into the [Manager] from inside a callback.
type CredentialsDelegate interface {
	CredentialsWereUpdated(authCredential AuthCredential, credential Credential, sessionID string)
	SessionWasInvalidated(sessionID string, authenticated bool)
}

// SessionInvalidatedDelegate is the narrower observer consumed by login and
// signup flows, which only care about invalidation.
type SessionInvalidatedDelegate interface {
	SessionWasInvalidated(sessionID string, authenticated bool)
}

// InvalidatedSession is published on the process-wide invalidation stream
// when an authenticated session is torn down, so the user-account layer can
// evict the matching logged-in profile.
type InvalidatedSession struct {
	SessionID string
	UserID    string
}

// AuditEvent is a structured audit record emitted by the session manager.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the manager's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricSessionObtained counts new sessions inserted by obtain callbacks.
	MetricSessionObtained = internalmetrics.MetricSessionObtained
	// MetricSessionUpdated counts token refresh merges.
	MetricSessionUpdated = internalmetrics.MetricSessionUpdated
	// MetricAdditionalInfoAttached counts additional-info attachments.
	MetricAdditionalInfoAttached = internalmetrics.MetricAdditionalInfoAttached
	// MetricAuthSessionInvalidated counts authenticated invalidations.
	MetricAuthSessionInvalidated = internalmetrics.MetricAuthSessionInvalidated
	// MetricUnauthSessionInvalidated counts unauthenticated invalidations.
	MetricUnauthSessionInvalidated = internalmetrics.MetricUnauthSessionInvalidated
	// MetricSessionsCleared counts administrative clears.
	MetricSessionsCleared = internalmetrics.MetricSessionsCleared
	// MetricCredentialLookupMiss counts read accessors returning no match.
	MetricCredentialLookupMiss = internalmetrics.MetricCredentialLookupMiss
	// MetricPersistFailure counts secure-storage write failures.
	MetricPersistFailure = internalmetrics.MetricPersistFailure
	// MetricDecodeFailure counts persisted blobs that failed to decode.
	MetricDecodeFailure = internalmetrics.MetricDecodeFailure
	// MetricDuplicateUserSessions counts user lookups matching more than one record.
	MetricDuplicateUserSessions = internalmetrics.MetricDuplicateUserSessions
)

// Metrics holds atomic counters for session lifecycle operations.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
