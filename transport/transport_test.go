package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	authcore "github.com/lockpass/authcore"
	"github.com/lockpass/authcore/keychain"
)

func newTransportManager(t *testing.T) *authcore.Manager {
	t.Helper()

	mgr, err := authcore.New().
		WithKeychain(keychain.NewMemoryKeychain()).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(mgr.Close)
	return mgr
}

func TestAuthenticatorAttachesHeaders(t *testing.T) {
	mgr := newTransportManager(t)
	mgr.OnSessionObtaining(authcore.Credential{
		SessionID:   "s1",
		UserID:      "u1",
		AccessToken: "tok-1",
	})

	var gotAuth, gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSession = r.Header.Get("X-Session-Id")
	}))
	defer srv.Close()

	rt, err := NewAuthenticator(nil, mgr, mgr, "s1")
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotSession != "s1" {
		t.Fatalf("unexpected session header %q", gotSession)
	}
}

func TestAuthenticatorPicksUpRefreshedToken(t *testing.T) {
	mgr := newTransportManager(t)
	mgr.OnSessionObtaining(authcore.Credential{SessionID: "s1", UserID: "u1", AccessToken: "tok-1"})

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	rt, err := NewAuthenticator(nil, mgr, mgr, "s1")
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}
	client := &http.Client{Transport: rt}

	mgr.OnUpdate(authcore.Credential{SessionID: "s1", UserID: "u1", AccessToken: "tok-2"}, "s1")

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-2" {
		t.Fatalf("expected refreshed token attached, got %q", gotAuth)
	}
}

func TestAuthenticatorReportsUnauthorized(t *testing.T) {
	mgr := newTransportManager(t)
	mgr.OnSessionObtaining(authcore.Credential{SessionID: "s1", UserID: "u1", AccessToken: "tok-1"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	rt, err := NewAuthenticator(nil, mgr, mgr, "s1")
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if mgr.Credential("s1") != nil {
		t.Fatal("expected session invalidated after 401")
	}
}

func TestAuthenticatorNoSession(t *testing.T) {
	mgr := newTransportManager(t)

	rt, err := NewAuthenticator(nil, mgr, mgr, "ghost")
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	if _, err := rt.RoundTrip(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestAuthenticatorRequiresSource(t *testing.T) {
	if _, err := NewAuthenticator(nil, nil, nil, "s1"); !errors.Is(err, ErrNilManager) {
		t.Fatalf("expected ErrNilManager, got %v", err)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "u1",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := TokenExpiry(signedToken(t, exp))
	if err != nil {
		t.Fatalf("TokenExpiry failed: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, got)
	}

	if _, err := TokenExpiry("opaque-token"); !errors.Is(err, ErrTokenNotJWT) {
		t.Fatalf("expected ErrTokenNotJWT for opaque token, got %v", err)
	}
}

func TestTokenStale(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	if TokenStale(fresh, time.Minute) {
		t.Fatal("fresh token must not be stale")
	}

	expiring := signedToken(t, time.Now().Add(10*time.Second))
	if !TokenStale(expiring, time.Minute) {
		t.Fatal("expiring token must be stale within skew")
	}

	if TokenStale("opaque-token", time.Minute) {
		t.Fatal("opaque token staleness is unknowable, must report false")
	}
}
