package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
)

// Config identifies the OAuth client the CLI authenticates as. It is
// immutable for the lifetime of the Authenticator.
type Config struct {
	Issuer          string
	ClientID        string
	Scopes          []string
	CAFile          string
	InsecureSkipTLS bool
}

// Authenticator produces a bearer access token, going through the token
// cache, a silent refresh and finally the interactive device flow. Every
// path that obtains a new token persists it before returning, so the next
// invocation is satisfied from the cache.
type Authenticator struct {
	cfg         Config
	store       Store
	client      *http.Client
	out         io.Writer
	interactive bool
	now         func() time.Time
}

type Option func(*Authenticator)

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Authenticator) { a.client = client }
}

// WithOutput sets the writer for operator-facing messages.
func WithOutput(w io.Writer) Option {
	return func(a *Authenticator) { a.out = w }
}

// WithInteractive enables opening the verification URL in a browser and
// showing a wait indicator while polling.
func WithInteractive(interactive bool) Option {
	return func(a *Authenticator) { a.interactive = interactive }
}

func New(cfg Config, store Store, opts ...Option) (*Authenticator, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("issuer and client-id are required")
	}
	if store == nil {
		return nil, errors.New("token store is required")
	}
	a := &Authenticator{
		cfg:   cfg,
		store: store,
		out:   os.Stdout,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		client, err := newHTTPClient(cfg.CAFile, cfg.InsecureSkipTLS)
		if err != nil {
			return nil, err
		}
		a.client = client
	}
	return a, nil
}

// Token returns a valid access token. A usable cached token is returned
// without any network call; otherwise the issuer is discovered, a refresh
// is attempted, and the device flow runs as the last resort.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	if rec, ok := a.store.LoadIfValid(a.now()); ok {
		return rec.AccessToken, nil
	}

	endpoints, err := Discover(ctx, a.client, a.cfg.Issuer)
	if err != nil {
		return "", err
	}
	if endpoints.DeviceAuthorizationEndpoint == "" {
		return "", ErrDeviceFlowNotSupported
	}

	if prev, ok := a.store.Load(); ok && prev.RefreshToken != "" {
		if rec, refreshed := refreshToken(ctx, a.client, a.cfg.ClientID, endpoints.TokenEndpoint, prev); refreshed {
			saved, err := a.store.Save(rec)
			if err != nil {
				return "", fmt.Errorf("failed to persist token: %w", err)
			}
			return saved.AccessToken, nil
		}
	}

	return a.deviceFlow(ctx, endpoints)
}

// Logout removes the cached credential.
func (a *Authenticator) Logout() error {
	return a.store.Clear()
}

func (a *Authenticator) deviceFlow(ctx context.Context, endpoints *Endpoints) (string, error) {
	scopes := a.cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid"}
	}
	deviceResp, err := requestDeviceCode(ctx, a.client, endpoints.DeviceAuthorizationEndpoint, a.cfg.ClientID, scopes)
	if err != nil {
		return "", err
	}

	verificationURL := deviceResp.VerificationURIComplete
	if verificationURL == "" {
		verificationURL = deviceResp.VerificationURI
	}
	_, _ = fmt.Fprintf(a.out, "Visit %s and enter code: %s\n", verificationURL, deviceResp.UserCode)
	if verificationURL != "" && a.interactive && !strings.EqualFold(os.Getenv("STORECTL_NO_BROWSER"), "true") {
		_ = openBrowser(verificationURL)
	}

	interval := time.Duration(deviceResp.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}
	expiresIn := deviceResp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 600
	}
	deadline := a.now().Add(time.Duration(expiresIn) * time.Second)

	var spin *spinner.Spinner
	if a.interactive {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " Waiting for authorization..."
		spin.Start()
		defer spin.Stop()
	}

	for {
		if a.now().After(deadline) {
			return "", ErrAuthorizationTimedOut
		}
		rec, err := pollDeviceToken(ctx, a.client, endpoints.TokenEndpoint, a.cfg.ClientID, deviceResp.DeviceCode)
		if err != nil {
			if errors.Is(err, errAuthorizationPending) {
				if err := wait(ctx, interval); err != nil {
					return "", err
				}
				continue
			}
			if errors.Is(err, errSlowDown) {
				interval += 5 * time.Second
				if err := wait(ctx, interval); err != nil {
					return "", err
				}
				continue
			}
			return "", err
		}
		saved, err := a.store.Save(rec)
		if err != nil {
			return "", fmt.Errorf("failed to persist token: %w", err)
		}
		if spin != nil {
			spin.Stop()
		}
		_, _ = fmt.Fprintln(a.out, "Authenticated.")
		return saved.AccessToken, nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
