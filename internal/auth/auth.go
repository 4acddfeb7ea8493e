// Package auth loads, stores and obtains OAuth2 tokens for the backends.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"taskboard/internal/config"
)

// ErrNoToken is returned when no token file exists.
var ErrNoToken = errors.New("no stored token")

// LoadToken reads an oauth2 token from path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("reading token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes tok to path with mode 0600.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// RESTTokenSource picks the credentials for the REST backend, in order:
// the client-credentials flow, a static token from settings, the stored
// token file. It returns nil when none is configured; requests are then
// sent without an Authorization header.
func RESTTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	if cfg.OAuth.Enabled() {
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}
		return cc.TokenSource(ctx), nil
	}

	if cfg.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}), nil
	}

	tok, err := LoadToken(cfg.TokenPath())
	if errors.Is(err, ErrNoToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(tok), nil
}
