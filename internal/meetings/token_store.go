package meetings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential is the persisted OAuth state for one connected account. The
// refresh token is the durable secret; the access token and its expiry are a
// cache that survives restarts.
type Credential struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	Scopes           string    `json:"scopes"`
	UserLabel        string    `json:"user_label"`
	ClientIdentifier string    `json:"client_identifier"`
}

// TokenStore abstracts persistence for meeting-platform OAuth state.
type TokenStore interface {
	Load() (Credential, error)
	Save(Credential) error
}

// FileTokenStore writes the credential to a JSON file on disk.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a FileTokenStore rooted at the provided path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load reads the credential from disk. A missing file resolves to an empty
// credential.
func (s *FileTokenStore) Load() (Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credential{}, nil
		}
		return Credential{}, fmt.Errorf("read meeting auth state: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode meeting auth state: %w", err)
	}
	return cred, nil
}

// Save persists the credential to disk with restricted permissions.
func (s *FileTokenStore) Save(cred Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure auth state directory: %w", err)
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meeting auth state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write meeting auth state: %w", err)
	}
	return nil
}
