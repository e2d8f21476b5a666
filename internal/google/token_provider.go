package google

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
)

// DefaultAccount is the account name used when a tool call names none.
const DefaultAccount = "default"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// TokenProvider hands out authenticated HTTP clients per account.
type TokenProvider interface {
	HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error)
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads one token file per account. The default account
// uses the configured token file; other accounts use google-<account>.json
// next to it.
type FileTokenProvider struct {
	opts TokenSourceOptions
}

// NewFileTokenProvider creates a provider rooted at the default token file.
func NewFileTokenProvider(opts TokenSourceOptions) *FileTokenProvider {
	return &FileTokenProvider{opts: opts}
}

// TokenFileForAccount returns the token file path of an account.
func (p *FileTokenProvider) TokenFileForAccount(account string) (string, error) {
	if account == "" || account == DefaultAccount {
		return p.opts.TokenFile, nil
	}
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p.opts.TokenFile), "google-"+account+".json"), nil
}

// HTTPClientForAccount returns an authenticated client for the account.
func (p *FileTokenProvider) HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	path, err := p.TokenFileForAccount(account)
	if err != nil {
		return nil, err
	}
	opts := p.opts
	opts.TokenFile = path
	return HTTPClient(ctx, opts)
}

// HasTokenForAccount reports whether a token is stored for the account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	path, err := p.TokenFileForAccount(account)
	if err != nil {
		return false
	}
	return HasToken(path)
}

// AuthenticationErrorMessage explains how to provide a token for an account.
func (p *FileTokenProvider) AuthenticationErrorMessage(account string) string {
	path, err := p.TokenFileForAccount(account)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("No Google OAuth token found for account %q. Save a token with the Drive scope as JSON to %s and retry.", account, path)
}
