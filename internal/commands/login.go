package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/store"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	token string
}

// SetToken sets the --token flag (for testing).
func (c *LoginCmd) SetToken(token string) { c.token = token }

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Store credentials for the configured backend" }
func (c *LoginCmd) Usage() string      { return "taskboard login [--token <bearer>]" }
func (c *LoginCmd) NeedsBackend() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if cfg.Backend == config.BackendGoogleTasks {
		return c.googleLogin(ctx, cfg, out, errOut)
	}
	return c.restLogin(ctx, cfg, out, errOut)
}

// restLogin stores a bearer token, or checks that the client-credentials
// flow can obtain one.
func (c *LoginCmd) restLogin(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	token := strings.TrimSpace(c.token)
	if token == "" {
		if !cfg.OAuth.Enabled() {
			fmt.Fprintln(errOut, "error: --token required (or configure oauth.client_id and oauth.token_url)")
			return exitcode.UserError
		}
		ts, err := auth.RESTTokenSource(ctx, cfg)
		if err != nil {
			return fail(errOut, err)
		}
		if _, err := ts.Token(); err != nil {
			fmt.Fprintf(errOut, "error: client credentials rejected: %v\n", err)
			return exitcode.AuthError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := auth.SaveToken(cfg.TokenPath(), &oauth2.Token{AccessToken: token, TokenType: "Bearer"}); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *LoginCmd) googleLogin(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
		fmt.Fprintln(errOut, "To use the Google Tasks backend you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
		fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app'")
		fmt.Fprintln(errOut, "4. Download the JSON file and save it as:")
		fmt.Fprintf(errOut, "   %s/%s\n", cfg.Dir, config.OAuthClientFile)
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'taskboard login' again.")
		return exitcode.AuthError
	}

	if cfg.HasToken() && auth.GoogleTokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	tok, err := auth.GoogleLogin(ctx, cfg, errOut)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "error: cancelled")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := auth.SaveToken(cfg.TokenPath(), tok); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
