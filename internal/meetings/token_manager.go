package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCredentialMissing is returned when no refresh token has been linked yet.
var ErrCredentialMissing = errors.New("meeting platform credential not linked")

// tokenExpiryLeeway is how close to expiry an access token may get before it
// is refreshed ahead of use.
const tokenExpiryLeeway = 60 * time.Second

// TokenManagerOption customises TokenManager construction.
type TokenManagerOption func(*TokenManager)

// WithTokenHTTPClient overrides the HTTP client used for the token endpoint.
func WithTokenHTTPClient(client *http.Client) TokenManagerOption {
	return func(m *TokenManager) { m.httpClient = client }
}

// WithTokenStore injects a custom persistence layer.
func WithTokenStore(store TokenStore) TokenManagerOption {
	return func(m *TokenManager) { m.store = store }
}

// TokenManager persists meeting-platform OAuth state and refreshes the
// short-lived access token from the stored refresh token.
type TokenManager struct {
	clientID     string
	clientSecret string
	tokenURL     string
	userLabel    string

	httpClient *http.Client
	store      TokenStore

	stateMu sync.RWMutex
	state   Credential
}

// NewTokenManager builds a TokenManager persisting to statePath.
func NewTokenManager(clientID, clientSecret, tokenURL, userLabel, statePath string, opts ...TokenManagerOption) (*TokenManager, error) {
	mgr := &TokenManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     strings.TrimRight(tokenURL, "/"),
		userLabel:    userLabel,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		store:        NewFileTokenStore(statePath),
	}
	for _, opt := range opts {
		opt(mgr)
	}
	if mgr.httpClient == nil {
		mgr.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if mgr.store == nil {
		mgr.store = NewFileTokenStore(statePath)
	}

	if err := mgr.loadInitialState(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *TokenManager) loadInitialState() error {
	state, err := m.store.Load()
	if err != nil {
		return err
	}

	dirty := false
	if state.ClientIdentifier == "" {
		state.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
		dirty = true
	}
	if state.UserLabel == "" && m.userLabel != "" {
		state.UserLabel = m.userLabel
		dirty = true
	}
	m.state = state

	if dirty {
		if err := m.store.Save(m.state); err != nil {
			return err
		}
	}
	return nil
}

// HasCredential reports whether a refresh token is available.
func (m *TokenManager) HasCredential() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return strings.TrimSpace(m.state.RefreshToken) != ""
}

// Credential returns a copy of the current persisted state.
func (m *TokenManager) Credential() Credential {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// SetCredential replaces the stored credential, typically after an external
// OAuth consent flow. The generated client identifier is preserved.
func (m *TokenManager) SetCredential(cred Credential) error {
	if strings.TrimSpace(cred.RefreshToken) == "" {
		return errors.New("refresh token is empty")
	}

	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if cred.ClientIdentifier == "" {
		cred.ClientIdentifier = m.state.ClientIdentifier
	}
	if cred.UserLabel == "" {
		cred.UserLabel = m.state.UserLabel
	}

	if err := m.store.Save(cred); err != nil {
		return err
	}
	m.state = cred
	return nil
}

// Token returns an access token valid for at least the expiry leeway,
// refreshing it first when needed.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cachedToken(); ok {
		return token, nil
	}
	return m.refreshToken(ctx)
}

func (m *TokenManager) cachedToken() (string, bool) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	if m.state.AccessToken != "" && time.Until(m.state.ExpiresAt) > tokenExpiryLeeway {
		return m.state.AccessToken, true
	}
	return "", false
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

func (m *TokenManager) refreshToken(ctx context.Context) (string, error) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if m.state.AccessToken != "" && time.Until(m.state.ExpiresAt) > tokenExpiryLeeway {
		return m.state.AccessToken, nil
	}

	if strings.TrimSpace(m.state.RefreshToken) == "" {
		return "", ErrCredentialMissing
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", m.state.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(m.clientID, m.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("token refresh failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	updated := m.state
	updated.AccessToken = payload.AccessToken
	updated.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	// Providers may rotate the refresh token on every grant or omit it; keep
	// the prior one when omitted so the chain is never broken.
	if payload.RefreshToken != "" {
		updated.RefreshToken = payload.RefreshToken
	}
	if payload.Scope != "" {
		updated.Scopes = payload.Scope
	}

	// Persist before swapping in-memory state so a crash cannot leave disk
	// behind memory.
	if err := m.store.Save(updated); err != nil {
		return "", err
	}
	m.state = updated
	return updated.AccessToken, nil
}
