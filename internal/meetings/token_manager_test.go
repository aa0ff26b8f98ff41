package meetings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"inlet/internal/meetings"
)

func newManager(t *testing.T, tokenURL, statePath string) *meetings.TokenManager {
	t.Helper()
	mgr, err := meetings.NewTokenManager("client-id", "client-secret", tokenURL, "default", statePath)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return mgr
}

func seedCredential(t *testing.T, statePath string, cred meetings.Credential) {
	t.Helper()
	store := meetings.NewFileTokenStore(statePath)
	if err := store.Save(cred); err != nil {
		t.Fatalf("seed credential: %v", err)
	}
}

func TestTokenReusesCachedAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint must not be called while the cached token is fresh")
	}))
	defer server.Close()

	statePath := filepath.Join(t.TempDir(), "auth.json")
	seedCredential(t, statePath, meetings.Credential{
		AccessToken:  "cached-token",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	mgr := newManager(t, server.URL, statePath)
	token, err := mgr.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "cached-token" {
		t.Fatalf("expected cached token, got %q", token)
	}
}

func TestTokenRefreshesWhenNearExpiry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			t.Errorf("missing basic auth, got %q/%q", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("refresh_token") != "refresh-1" {
			t.Errorf("unexpected refresh_token %q", r.PostForm.Get("refresh_token"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-token",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
			"scope":         "recording:read",
		})
	}))
	defer server.Close()

	statePath := filepath.Join(t.TempDir(), "auth.json")
	// 30s remaining is inside the expiry leeway.
	seedCredential(t, statePath, meetings.Credential{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(30 * time.Second),
	})

	mgr := newManager(t, server.URL, statePath)
	token, err := mgr.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "new-token" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", calls.Load())
	}

	// Rotated refresh token and scopes must be persisted.
	reloaded, err := meetings.NewFileTokenStore(statePath).Load()
	if err != nil {
		t.Fatalf("reload state: %v", err)
	}
	if reloaded.RefreshToken != "refresh-2" {
		t.Fatalf("rotated refresh token not persisted: %q", reloaded.RefreshToken)
	}
	if reloaded.Scopes != "recording:read" {
		t.Fatalf("scopes not persisted: %q", reloaded.Scopes)
	}

	// Second call must hit the cache.
	if _, err := mgr.Token(context.Background()); err != nil {
		t.Fatalf("second Token: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected cache hit on second call, got %d refreshes", calls.Load())
	}
}

func TestTokenKeepsPriorRefreshTokenWhenOmitted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new-token",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	statePath := filepath.Join(t.TempDir(), "auth.json")
	seedCredential(t, statePath, meetings.Credential{
		RefreshToken: "refresh-keep",
	})

	mgr := newManager(t, server.URL, statePath)
	if _, err := mgr.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	reloaded, err := meetings.NewFileTokenStore(statePath).Load()
	if err != nil {
		t.Fatalf("reload state: %v", err)
	}
	if reloaded.RefreshToken != "refresh-keep" {
		t.Fatalf("prior refresh token lost: %q", reloaded.RefreshToken)
	}
}

func TestTokenRefreshFailureLeavesStateUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"invalid grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	statePath := filepath.Join(t.TempDir(), "auth.json")
	seedCredential(t, statePath, meetings.Credential{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	mgr := newManager(t, server.URL, statePath)
	if _, err := mgr.Token(context.Background()); err == nil {
		t.Fatal("expected refresh failure")
	}

	reloaded, err := meetings.NewFileTokenStore(statePath).Load()
	if err != nil {
		t.Fatalf("reload state: %v", err)
	}
	if reloaded.RefreshToken != "refresh-1" {
		t.Fatalf("refresh token must survive a failed refresh: %q", reloaded.RefreshToken)
	}
	if reloaded.AccessToken != "stale-token" {
		t.Fatalf("state partially overwritten: %q", reloaded.AccessToken)
	}
}

func TestTokenWithoutCredential(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth.json")
	mgr := newManager(t, "http://127.0.0.1:0", statePath)

	if mgr.HasCredential() {
		t.Fatal("fresh state must not report a credential")
	}
	if _, err := mgr.Token(context.Background()); err != meetings.ErrCredentialMissing {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}

func TestSetCredentialPreservesClientIdentifier(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "auth.json")
	mgr := newManager(t, "http://127.0.0.1:0", statePath)

	generated := mgr.Credential().ClientIdentifier
	if generated == "" {
		t.Fatal("manager must generate a client identifier on first load")
	}

	if err := mgr.SetCredential(meetings.Credential{RefreshToken: "linked"}); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	if got := mgr.Credential().ClientIdentifier; got != generated {
		t.Fatalf("client identifier changed: %q != %q", got, generated)
	}
	if !mgr.HasCredential() {
		t.Fatal("credential not visible after SetCredential")
	}
}
