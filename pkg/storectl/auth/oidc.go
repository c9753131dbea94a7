package auth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Endpoints holds the issuer metadata the device flow needs.
type Endpoints struct {
	TokenEndpoint               string
	DeviceAuthorizationEndpoint string
}

// DiscoveryError reports a failure to fetch or parse issuer metadata.
type DiscoveryError struct {
	Issuer string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("OIDC discovery failed for %s: %v", e.Issuer, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover fetches {issuer}/.well-known/openid-configuration. The document
// is fetched fresh on every call; nothing is cached across invocations.
func Discover(ctx context.Context, client *http.Client, issuer string) (*Endpoints, error) {
	issuer = strings.TrimRight(issuer, "/")
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, &DiscoveryError{Issuer: issuer, Err: err}
	}
	var claims struct {
		TokenEndpoint               string `json:"token_endpoint"`
		DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`
	}
	if err := provider.Claims(&claims); err != nil {
		return nil, &DiscoveryError{Issuer: issuer, Err: err}
	}
	if claims.TokenEndpoint == "" {
		return nil, &DiscoveryError{Issuer: issuer, Err: errors.New("token endpoint not advertised")}
	}
	return &Endpoints{
		TokenEndpoint:               claims.TokenEndpoint,
		DeviceAuthorizationEndpoint: claims.DeviceAuthorizationEndpoint,
	}, nil
}

func newHTTPClient(caFile string, insecure bool) (*http.Client, error) {
	tlsConfig, err := loadTLSConfig(caFile, insecure)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{TLSClientConfig: tlsConfig}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}, nil
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	if caFile == "" && !insecure {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	certPool, err := loadCertPool(caFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure,
		RootCAs:            certPool,
	}, nil
}

func loadCertPool(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errors.New("failed to parse CA file")
	}
	return pool, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Start()
}
