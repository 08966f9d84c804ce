package authcore

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lockpass/authcore/credential"
	internalaudit "github.com/lockpass/authcore/internal/audit"
	"github.com/lockpass/authcore/keychain"
)

// Manager is the multi-session credential core. It owns the in-memory
// session table, persists it through the keychain after every mutation, and
// routes credential-refresh and invalidation callbacks from the transport
// layer back to the right session.
//
// A single mutex serializes every table mutation together with the
// persist-and-notify sequence that follows it: by the time a delegate
// observes a credential update, a subsequent read for that session returns
// the new value. Lifecycle callbacks never return errors: persistence
// failures are logged and counted, and the in-memory table stays
// authoritative for the rest of the process lifetime.
type Manager struct {
	config     Config
	module     credential.Module
	storageKey string

	mu       sync.Mutex
	table    *credential.Table
	delegate CredentialsDelegate
	loginDel SessionInvalidatedDelegate

	store   keychain.Keychain
	logger  *slog.Logger
	feed    *invalidationFeed
	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// SetDelegate registers the transport-layer observer. The manager does not
// own its delegate; replace with nil to unregister.
func (m *Manager) SetDelegate(d CredentialsDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delegate = d
}

// SetSessionInvalidatedDelegate registers the login/signup-flow observer.
func (m *Manager) SetSessionInvalidatedDelegate(d SessionInvalidatedDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginDel = d
}

// SubscribeInvalidations returns a channel of authenticated-session
// invalidations and a cancel function. Subscribers that fall behind drop
// events rather than blocking lifecycle callbacks.
func (m *Manager) SubscribeInvalidations() (<-chan InvalidatedSession, func()) {
	return m.feed.subscribe()
}

// Close stops the audit dispatcher and the invalidation stream. The manager
// must not be used afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.audit.Close()
	m.feed.close()
}

// AuditDropped reports audit events dropped under backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return m.metrics.Snapshot()
}

/*
====================================
LIFECYCLE CALLBACKS
====================================
*/

// OnSessionObtaining records a session freshly created by a login, signup,
// or unauth-bootstrap flow. Any records already owned by the same user are
// evicted first, which handles logging into the same account twice. The
// table is persisted; the delegate is only notified when
// [NotifyConfig.OnObtain] is set.
func (m *Manager) OnSessionObtaining(cred Credential) {
	m.logger.Info("session obtained", "sessionID", cred.SessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if cred.UserID != "" {
		for _, sid := range m.table.SessionIDsForUser(cred.UserID) {
			m.table.Remove(sid)
		}
	}

	m.table.Set(recordFromCredential(cred, m.module))
	m.persistLocked()
	m.metrics.Inc(MetricSessionObtained)
	m.emitAudit(internalaudit.EventSessionObtained, cred.SessionID, cred.UserID, true, nil)

	if m.config.Notify.OnObtain {
		m.notifyCredentialsUpdatedLocked(cred.SessionID)
	}
}

// OnUpdate merges a token refresh into the stored record for sessionID.
// Tokens, user name, and scopes are replaced; the user id and previously
// attached crypto material (mailbox password, salt, private key) are
// preserved when the incoming credential does not carry them, so an update
// never regresses them to empty. A missing record is inserted as an implicit obtain, tolerating
// obtain/update races in the transport layer. The delegate is notified with
// the merged record after persistence.
func (m *Manager) OnUpdate(cred Credential, sessionID string) {
	m.logger.Info("session credentials updated", "sessionID", sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	merged := recordFromCredential(cred, m.module)
	merged.SessionID = sessionID

	if existing := m.table.Get(sessionID); existing != nil {
		if merged.UserID == "" {
			merged.UserID = existing.UserID
		}
		if merged.MailboxPassword == "" {
			merged.MailboxPassword = existing.MailboxPassword
		}
		merged.PasswordKeySalt = existing.PasswordKeySalt
		merged.PrivateKey = existing.PrivateKey
	}

	m.table.Set(merged)
	m.persistLocked()
	m.metrics.Inc(MetricSessionUpdated)
	m.emitAudit(internalaudit.EventSessionUpdated, sessionID, merged.UserID, true, nil)
	m.notifyCredentialsUpdatedLocked(sessionID)
}

// OnAdditionalCredentialsInfoObtained attaches passphrase-derived material
// to an existing session, typically after a second factor or key unlock
// step. Each parameter is independently optional: nil leaves the stored
// value unchanged. When no record exists for sessionID the call is a no-op;
// there is nothing to attach material to.
func (m *Manager) OnAdditionalCredentialsInfoObtained(sessionID string, password, salt, privateKey *string) {
	m.logger.Info("additional credentials info obtained", "sessionID", sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.table.Get(sessionID)
	if existing == nil {
		m.logger.Warn("additional info for unknown session", "sessionID", sessionID)
		return
	}

	updated := existing.Clone()
	if password != nil {
		updated.MailboxPassword = *password
	}
	if salt != nil {
		updated.PasswordKeySalt = *salt
	}
	if privateKey != nil {
		updated.PrivateKey = *privateKey
	}

	m.table.Set(updated)
	m.persistLocked()
	m.metrics.Inc(MetricAdditionalInfoAttached)
	m.emitAudit(internalaudit.EventAdditionalInfo, sessionID, updated.UserID, true, nil)
	m.notifyCredentialsUpdatedLocked(sessionID)
}

// OnAuthenticatedSessionInvalidated removes the record for sessionID,
// persists, notifies the invalidation delegates, and publishes
// (sessionID, userID) on the process-wide stream so the user-account layer
// can evict the logged-in profile. Removing an unknown session still
// notifies: the transport layer needs to tear down its client either way.
func (m *Manager) OnAuthenticatedSessionInvalidated(sessionID string) {
	m.logger.Info("authenticated session invalidated", "sessionID", sessionID)
	m.invalidate(sessionID, true)
}

// OnUnauthenticatedSessionInvalidated removes the record for sessionID and
// notifies with authenticated == false. Unauth invalidation is an
// implementation detail, not a user-visible login state: consumers react by
// silently fetching a fresh anonymous session instead of logging anyone out.
func (m *Manager) OnUnauthenticatedSessionInvalidated(sessionID string) {
	m.logger.Info("unauthenticated session invalidated", "sessionID", sessionID)
	m.invalidate(sessionID, false)
}

func (m *Manager) invalidate(sessionID string, authenticated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.table.Remove(sessionID)
	m.persistLocked()

	userID := ""
	if removed != nil {
		userID = removed.UserID
	}

	if authenticated {
		m.metrics.Inc(MetricAuthSessionInvalidated)
	} else {
		m.metrics.Inc(MetricUnauthSessionInvalidated)
	}
	m.emitAudit(internalaudit.EventSessionInvalidated, sessionID, userID, removed != nil, nil)

	if m.delegate != nil {
		m.delegate.SessionWasInvalidated(sessionID, authenticated)
	}
	if m.loginDel != nil {
		m.loginDel.SessionWasInvalidated(sessionID, authenticated)
	}
	if authenticated {
		m.feed.publish(InvalidatedSession{SessionID: sessionID, UserID: userID})
	}
}

/*
====================================
READ ACCESSORS
====================================
*/

// Credential returns the wire-level credential for sessionID, or nil.
func (m *Manager) Credential(sessionID string) *Credential {
	m.logger.Debug("getting credential", "sessionID", sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.table.Get(sessionID)
	if rec == nil {
		m.metrics.Inc(MetricCredentialLookupMiss)
		return nil
	}
	cred := credentialFromRecord(rec)
	return &cred
}

// AuthCredential returns the full credential (including locally derived
// secret material) for sessionID, or nil.
func (m *Manager) AuthCredential(sessionID string) *AuthCredential {
	m.logger.Debug("getting auth credential", "sessionID", sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.table.Get(sessionID)
	if rec == nil {
		m.metrics.Inc(MetricCredentialLookupMiss)
		return nil
	}
	ac := authCredentialFromRecord(rec)
	return &ac
}

// GetCredential returns the full credential owned by userID, or nil. When
// left-over state matches more than one session the lowest sessionID wins
// deterministically and a warning is logged.
func (m *Manager) GetCredential(userID string) *AuthCredential {
	m.logger.Debug("getting credential by user", "userID", userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, n := m.table.GetByUserID(userID)
	if n > 1 {
		m.logger.Warn("multiple sessions for user", "userID", userID, "count", n)
		m.metrics.Inc(MetricDuplicateUserSessions)
		m.emitAudit(internalaudit.EventDuplicateUserSessions, rec.SessionID, userID, false,
			errors.New("duplicate sessions: "+strconv.Itoa(n)))
	}
	if rec == nil {
		m.metrics.Inc(MetricCredentialLookupMiss)
		return nil
	}
	ac := authCredentialFromRecord(rec)
	return &ac
}

// IsAuthenticated reports whether userID owns a non-credential-less session.
func (m *Manager) IsAuthenticated(userID string) bool {
	cred := m.GetCredential(userID)
	return cred != nil && cred.Authenticated()
}

// AllCredentials returns the wire-level credentials of every stored session
// in this manager's module, ordered by sessionID.
func (m *Manager) AllCredentials() []Credential {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.table.All()
	out := make([]Credential, 0, len(records))
	for _, rec := range records {
		out = append(out, credentialFromRecord(rec))
	}
	return out
}

/*
====================================
ADMINISTRATIVE OPERATIONS
====================================
*/

// ClearSessionsBySessionID removes the record for sessionID without going
// through the invalidation-notification protocol, then persists. Used by
// explicit account removal flows.
func (m *Manager) ClearSessionsBySessionID(sessionID string) {
	m.logger.Info("clearing sessions", "sessionID", sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.table.Remove(sessionID)
	m.persistLocked()
	m.metrics.Inc(MetricSessionsCleared)
	m.emitAudit(internalaudit.EventSessionsCleared, sessionID, "", true, nil)
}

// ClearSessionsByUserID removes every record owned by userID without
// notification, then persists.
func (m *Manager) ClearSessionsByUserID(userID string) {
	m.logger.Info("clearing sessions", "userID", userID)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sid := range m.table.SessionIDsForUser(userID) {
		m.table.Remove(sid)
	}
	m.persistLocked()
	m.metrics.Inc(MetricSessionsCleared)
	m.emitAudit(internalaudit.EventSessionsCleared, "", userID, true, nil)
}

// RemoveCredentials removes every session owned by userID. It is the
// account-removal entry point and behaves exactly like
// [Manager.ClearSessionsByUserID].
func (m *Manager) RemoveCredentials(userID string) {
	m.ClearSessionsByUserID(userID)
}

// RemoveAllCredentials wipes the whole table and persists the empty state.
func (m *Manager) RemoveAllCredentials() {
	m.logger.Info("removing all credentials")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.table.RemoveAll()
	m.persistLocked()
	m.metrics.Inc(MetricSessionsCleared)
	m.emitAudit(internalaudit.EventSessionsCleared, "", "", true, nil)
}

// UpdateEncryptionDetails attaches mailbox password, salt, and private key
// to an existing session. Thin wrapper over
// [Manager.OnAdditionalCredentialsInfoObtained] kept for app-layer callers.
func (m *Manager) UpdateEncryptionDetails(sessionID, mailboxPassword string, salt, privateKey *string) {
	m.OnAdditionalCredentialsInfoObtained(sessionID, &mailboxPassword, salt, privateKey)
}

// Migrate inserts a credential carried over from a single-account install.
// Unlike OnSessionObtaining it evicts nothing and notifies nobody.
func (m *Manager) Migrate(ac AuthCredential) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := recordFromCredential(ac.Credential, m.module)
	rec.PasswordKeySalt = ac.PasswordKeySalt
	rec.PrivateKey = ac.PrivateKey
	m.table.Set(rec)
	m.persistLocked()
}

/*
====================================
INTERNAL
====================================
*/

func (m *Manager) loadPersisted(ctx context.Context) {
	blob, err := m.store.Get(ctx, m.storageKey)
	if err != nil {
		switch {
		case errors.Is(err, keychain.ErrNotFound):
		case errors.Is(err, keychain.ErrCiphertextInvalid):
			// A blob sealed under a lost or rotated key is as unreadable as
			// a malformed one.
			m.discardCorrupted(err)
		default:
			m.logger.Error("failed to load persisted sessions", "error", err)
		}
		return
	}

	decoded, err := credential.Decode(blob)
	if err != nil {
		m.discardCorrupted(err)
		return
	}

	m.table.Load(decoded)
}

// discardCorrupted handles an unreadable persisted table: start empty and,
// when configured, remove the entry so later persists are not writing next
// to a wedged blob.
func (m *Manager) discardCorrupted(cause error) {
	m.logger.Error("failed to decode persisted sessions", "error", cause)
	m.metrics.Inc(MetricDecodeFailure)
	m.emitAudit(internalaudit.EventDecodeFailed, "", "", false, cause)
	if !m.config.Storage.DiscardCorrupted {
		return
	}
	if err := m.store.Remove(context.Background(), m.storageKey); err != nil {
		m.logger.Error("failed to discard corrupted blob", "error", err)
	}
}

// persistLocked re-persists the full table. Callers hold m.mu. Failure is
// logged and counted, never propagated: these callbacks run on transport
// completion handlers and in-memory state must stay usable.
func (m *Manager) persistLocked() {
	blob, err := credential.Encode(m.table.Snapshot())
	if err == nil {
		err = m.store.Set(context.Background(), m.storageKey, blob)
	}
	if err != nil {
		m.logger.Error("failed to persist sessions", "error", err)
		m.metrics.Inc(MetricPersistFailure)
		m.emitAudit(internalaudit.EventPersistFailed, "", "", false, err)
	}
}

func (m *Manager) notifyCredentialsUpdatedLocked(sessionID string) {
	if m.delegate == nil {
		return
	}
	rec := m.table.Get(sessionID)
	if rec == nil {
		return
	}
	m.delegate.CredentialsWereUpdated(authCredentialFromRecord(rec), credentialFromRecord(rec), sessionID)
}

func (m *Manager) emitAudit(eventType, sessionID, userID string, success bool, cause error) {
	if m.audit == nil {
		return
	}
	ev := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: sessionID,
		UserID:    userID,
		Module:    m.module.String(),
		Success:   success,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	m.audit.Emit(context.Background(), ev)
}

func recordFromCredential(c Credential, module credential.Module) *credential.Record {
	scopes := c.Scopes
	if scopes != nil {
		scopes = make([]string, len(c.Scopes))
		copy(scopes, c.Scopes)
	}
	return &credential.Record{
		SessionID:       c.SessionID,
		UserID:          c.UserID,
		AccessToken:     c.AccessToken,
		RefreshToken:    c.RefreshToken,
		UserName:        c.UserName,
		Scopes:          scopes,
		MailboxPassword: c.MailboxPassword,
		CredentialLess:  c.CredentialLess,
		Module:          module,
	}
}

func credentialFromRecord(r *credential.Record) Credential {
	scopes := r.Scopes
	if scopes != nil {
		scopes = make([]string, len(r.Scopes))
		copy(scopes, r.Scopes)
	}
	return Credential{
		SessionID:       r.SessionID,
		UserID:          r.UserID,
		AccessToken:     r.AccessToken,
		RefreshToken:    r.RefreshToken,
		UserName:        r.UserName,
		Scopes:          scopes,
		MailboxPassword: r.MailboxPassword,
		CredentialLess:  r.CredentialLess,
	}
}

func authCredentialFromRecord(r *credential.Record) AuthCredential {
	return AuthCredential{
		Credential:      credentialFromRecord(r),
		PasswordKeySalt: r.PasswordKeySalt,
		PrivateKey:      r.PrivateKey,
	}
}
