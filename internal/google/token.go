package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoToken is returned when no usable token is stored for an account.
var ErrNoToken = errors.New("no Google OAuth token")

// LoadToken reads a token file.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoToken, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w in %s: token is empty", ErrNoToken, path)
	}
	return &tok, nil
}

// SaveToken writes a token file readable only by the current user.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// HasToken reports whether a token file exists and parses.
func HasToken(path string) bool {
	_, err := LoadToken(path)
	return err == nil
}

// TokenSourceOptions locates the token and, optionally, the OAuth client used to refresh it.
type TokenSourceOptions struct {
	TokenFile    string
	ClientID     string
	ClientSecret string

	// Endpoint overrides Google's OAuth endpoint (tests).
	Endpoint *oauth2.Endpoint
}

// NewTokenSource returns a token source for the saved token. Without client
// credentials the token is used as is and fails once it has expired.
func NewTokenSource(ctx context.Context, opts TokenSourceOptions) (oauth2.TokenSource, error) {
	tok, err := LoadToken(opts.TokenFile)
	if err != nil {
		return nil, err
	}

	if opts.ClientID == "" || opts.ClientSecret == "" || tok.RefreshToken == "" {
		if !tok.Valid() {
			return nil, fmt.Errorf("%w: saved token has expired and cannot be refreshed without GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET", ErrNoToken)
		}
		return oauth2.StaticTokenSource(tok), nil
	}

	endpoint := google.Endpoint
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}
	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       DefaultOAuthScopes,
	}

	return &persistingSource{
		path: opts.TokenFile,
		base: conf.TokenSource(ctx, tok),
		last: tok.AccessToken,
	}, nil
}

// persistingSource writes refreshed tokens back to the token file.
type persistingSource struct {
	mu   sync.Mutex
	path string
	base oauth2.TokenSource
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh Google token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := SaveToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// HTTPClient returns an HTTP client that authenticates with the saved token.
func HTTPClient(ctx context.Context, opts TokenSourceOptions) (*http.Client, error) {
	ts, err := NewTokenSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
