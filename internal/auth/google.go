package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"taskboard/internal/config"
)

const (
	// GoogleTasksScope grants read/write access to Google Tasks.
	GoogleTasksScope = "https://www.googleapis.com/auth/tasks"

	callbackTimeout  = 5 * time.Minute
	exchangeTimeout  = 30 * time.Second
	callbackPortBase = 8085
	callbackPorts    = 5
)

// ErrNoOAuthClient is returned when oauth_client.json is missing.
var ErrNoOAuthClient = errors.New("oauth client file not found")

// GoogleConfig reads the installed-app client from the config directory.
func GoogleConfig(cfg *config.Config) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoOAuthClient
		}
		return nil, fmt.Errorf("reading %s: %w", config.OAuthClientFile, err)
	}
	oc, err := google.ConfigFromJSON(data, GoogleTasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oc, nil
}

// GoogleTokenSource returns an auto-refreshing source for the stored token.
func GoogleTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	oc, err := GoogleConfig(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	return oc.TokenSource(ctx, tok), nil
}

// GoogleTokenValid reports whether the stored token has a refresh token and
// can currently produce an access token.
func GoogleTokenValid(ctx context.Context, cfg *config.Config) bool {
	tok, err := LoadToken(cfg.TokenPath())
	if err != nil || tok.RefreshToken == "" {
		return false
	}
	oc, err := GoogleConfig(cfg)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = oc.TokenSource(ctx, tok).Token()
	return err == nil
}

// GoogleLogin runs the installed-app flow with PKCE. The consent URL is
// written to prompt; the authorization code arrives on a loopback callback.
func GoogleLogin(ctx context.Context, cfg *config.Config, prompt io.Writer) (*oauth2.Token, error) {
	oc, err := GoogleConfig(cfg)
	if err != nil {
		return nil, err
	}

	port, ln, err := listenLoopback()
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	oc.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	state, err := newState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()
	url := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(prompt, "Open this URL in your browser:")
	fmt.Fprintln(prompt, url)

	code, err := awaitCode(ctx, ln, state)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	tok, err := oc.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return tok, nil
}

// ErrStateMismatch is returned when the callback carries a state other than
// the one sent in the consent URL.
var ErrStateMismatch = errors.New("oauth callback state mismatch")

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// awaitCode serves the callback on ln until a code with the expected state
// arrives.
func awaitCode(ctx context.Context, ln net.Listener, state string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			select {
			case errCh <- ErrStateMismatch:
			default:
			}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			select {
			case errCh <- errors.New("callback without authorization code"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>taskboard is signed in. You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(callbackTimeout):
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func listenLoopback() (int, net.Listener, error) {
	for port := callbackPortBase; port < callbackPortBase+callbackPorts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, ln, nil
		}
	}
	return 0, nil, errors.New("could not bind a local port for the oauth callback")
}
