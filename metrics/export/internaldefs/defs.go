package internaldefs

import (
	authcore "github.com/lockpass/authcore"
)

// CounterDef pairs a core metric ID with its exported name and help text.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the session manager maintains. Both
// exporters iterate this slice so metric names stay identical across
// Prometheus and OTel output.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricSessionObtained, Name: "authcore_session_obtained_total", Help: "Sessions recorded from login, signup, and bootstrap flows."},
	{ID: authcore.MetricSessionUpdated, Name: "authcore_session_updated_total", Help: "Credential refreshes merged into stored sessions."},
	{ID: authcore.MetricAdditionalInfoAttached, Name: "authcore_additional_info_attached_total", Help: "Passphrase-derived material attachments."},
	{ID: authcore.MetricAuthSessionInvalidated, Name: "authcore_auth_session_invalidated_total", Help: "Authenticated session invalidations."},
	{ID: authcore.MetricUnauthSessionInvalidated, Name: "authcore_unauth_session_invalidated_total", Help: "Unauthenticated session invalidations."},
	{ID: authcore.MetricSessionsCleared, Name: "authcore_sessions_cleared_total", Help: "Administrative clear operations."},
	{ID: authcore.MetricPersistFailure, Name: "authcore_persist_failure_total", Help: "Failed table persistence attempts."},
	{ID: authcore.MetricDecodeFailure, Name: "authcore_decode_failure_total", Help: "Persisted blobs discarded as undecodable."},
	{ID: authcore.MetricCredentialLookupMiss, Name: "authcore_credential_lookup_miss_total", Help: "Credential reads for unknown sessions or users."},
	{ID: authcore.MetricDuplicateUserSessions, Name: "authcore_duplicate_user_sessions_total", Help: "User lookups that matched more than one session."},
}
