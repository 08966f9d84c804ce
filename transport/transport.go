package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authcore "github.com/lockpass/authcore"
)

var (
	ErrNilManager    = errors.New("nil credential manager")
	ErrNoSession     = errors.New("no session for request")
	ErrTokenNotJWT   = errors.New("access token is not a jwt")
	ErrTokenNoExpiry = errors.New("access token carries no expiry claim")
)

const (
	headerAuthorization = "Authorization"
	headerSessionID     = "X-Session-Id"
	bearerPrefix        = "Bearer "
)

// CredentialSource supplies the current wire credential for a session.
// [authcore.Manager] satisfies it.
type CredentialSource interface {
	Credential(sessionID string) *authcore.Credential
}

// InvalidationReporter receives session invalidations detected on the wire.
// [authcore.Manager] satisfies it.
type InvalidationReporter interface {
	OnAuthenticatedSessionInvalidated(sessionID string)
	OnUnauthenticatedSessionInvalidated(sessionID string)
}

// Authenticator is an [http.RoundTripper] bound to one session. Each request
// re-reads the credential from the source, so token refreshes recorded by
// the manager are picked up without rebuilding the client. A 401 response is
// reported back to the manager as an invalidation of the bound session.
type Authenticator struct {
	base      http.RoundTripper
	source    CredentialSource
	reporter  InvalidationReporter
	sessionID string
}

// NewAuthenticator wraps base with credential injection for sessionID. A nil
// base falls back to [http.DefaultTransport]. reporter may be nil when the
// caller handles 401 responses itself.
func NewAuthenticator(base http.RoundTripper, source CredentialSource, reporter InvalidationReporter, sessionID string) (*Authenticator, error) {
	if source == nil {
		return nil, ErrNilManager
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authenticator{
		base:      base,
		source:    source,
		reporter:  reporter,
		sessionID: sessionID,
	}, nil
}

// RoundTrip attaches the session's access token and session id, forwards the
// request, and reports a 401 response as an invalidation. The request is
// cloned before mutation per the RoundTripper contract.
func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	cred := a.source.Credential(a.sessionID)
	if cred == nil {
		return nil, ErrNoSession
	}

	out := req.Clone(req.Context())
	out.Header.Set(headerSessionID, a.sessionID)
	if cred.AccessToken != "" {
		out.Header.Set(headerAuthorization, bearerPrefix+cred.AccessToken)
	}

	resp, err := a.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && a.reporter != nil {
		if cred.Authenticated() {
			a.reporter.OnAuthenticatedSessionInvalidated(a.sessionID)
		} else {
			a.reporter.OnUnauthenticatedSessionInvalidated(a.sessionID)
		}
	}

	return resp, nil
}

// TokenExpiry returns the exp claim of a JWT access token without verifying
// its signature. The token was issued by the server this client talks to, so
// the claim is only trusted for scheduling a proactive refresh, never for
// authorization.
func TokenExpiry(accessToken string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, ErrTokenNotJWT
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrTokenNoExpiry
	}
	return exp.Time, nil
}

// TokenStale reports whether a JWT access token expires within skew. Opaque
// tokens report false: their staleness is only discoverable through a 401.
func TokenStale(accessToken string, skew time.Duration) bool {
	exp, err := TokenExpiry(accessToken)
	if err != nil {
		return false
	}
	return time.Until(exp) < skew
}
