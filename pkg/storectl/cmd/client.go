package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lelloman/storectl/pkg/storectl/auth"
	"github.com/lelloman/storectl/pkg/storectl/client"
	"github.com/lelloman/storectl/pkg/storectl/config"
)

func buildClient(cmdCtx context.Context, rt *runtimeState) (*client.Client, error) {
	// If both server and token are provided via flags/env vars, bypass
	// config and context resolution entirely.
	if rt.serverOverride != "" && rt.tokenOverride != "" {
		options := []client.Option{
			client.WithServer(rt.serverOverride),
			client.WithToken(rt.tokenOverride),
		}
		if rt.verbose {
			options = append(options, client.WithDebugLogger(debugLogger()))
		}
		return client.New(options...)
	}

	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	ctxCfg, err := rt.ResolveContext()
	if err != nil {
		return nil, err
	}
	server := rt.resolveServer(ctxCfg)
	if server == "" {
		return nil, errors.New("server is required")
	}

	token := rt.tokenOverride
	if token == "" {
		authenticator, err := buildAuthenticator(rt, ctxCfg)
		if err != nil {
			return nil, err
		}
		token, err = authenticator.Token(cmdCtx)
		if err != nil {
			return nil, err
		}
	}

	options := []client.Option{
		client.WithServer(server),
		client.WithToken(token),
		client.WithTLSConfig(ctxCfg.CAFile, ctxCfg.InsecureSkipTLSVerify),
	}
	if rt.verbose {
		options = append(options, client.WithDebugLogger(debugLogger()))
	}
	return client.New(options...)
}

func buildAuthenticator(rt *runtimeState, ctxCfg *config.Context) (*auth.Authenticator, error) {
	if ctxCfg.OIDC.Issuer == "" {
		return nil, fmt.Errorf("context %s has no OIDC issuer; run 'storectl config view'", ctxCfg.Name)
	}
	store, err := tokenStore(rt, ctxCfg)
	if err != nil {
		return nil, err
	}
	return auth.New(auth.Config{
		Issuer:          ctxCfg.OIDC.Issuer,
		ClientID:        ctxCfg.ClientIDOrDefault(),
		Scopes:          ctxCfg.OIDC.Scopes,
		CAFile:          ctxCfg.CAFile,
		InsecureSkipTLS: ctxCfg.InsecureSkipTLSVerify,
	}, store,
		auth.WithOutput(rt.Writer()),
		auth.WithInteractive(!rt.nonInteractive),
	)
}

func tokenStore(rt *runtimeState, ctxCfg *config.Context) (auth.Store, error) {
	switch rt.TokenStorage() {
	case config.TokenStorageKeychain:
		return auth.NewKeyringStore(ctxCfg.Name), nil
	case config.TokenStorageFile, "":
		return auth.NewFileStore(tokenFilePath(ctxCfg.Name)), nil
	default:
		return nil, fmt.Errorf("unknown token storage: %s", rt.TokenStorage())
	}
}

func tokenFilePath(contextName string) string {
	return filepath.Join(config.DefaultTokenDir(), contextName+".json")
}

// debugLogger writes request traces to stderr so JSON output on stdout
// stays parseable.
func debugLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
