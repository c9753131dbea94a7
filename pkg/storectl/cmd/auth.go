package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the store",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
		newAuthTokenCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login via the OIDC device flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			ctxCfg, err := rt.ResolveContext()
			if err != nil {
				return err
			}
			authenticator, err := buildAuthenticator(rt, ctxCfg)
			if err != nil {
				return err
			}
			if _, err := authenticator.Token(cmd.Context()); err != nil {
				return err
			}
			store, err := tokenStore(rt, ctxCfg)
			if err != nil {
				return err
			}
			if rec, ok := store.Load(); ok {
				_, _ = fmt.Fprintf(rt.Writer(), "Token expires at %s\n", rec.Expiry().UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			ctxCfg, err := rt.ResolveContext()
			if err != nil {
				return err
			}
			store, err := tokenStore(rt, ctxCfg)
			if err != nil {
				return err
			}
			rec, ok := store.Load()
			if !ok {
				_, _ = fmt.Fprintln(rt.Writer(), "Not authenticated")
				return nil
			}
			state := "valid"
			if !rec.ValidAt(time.Now()) {
				state = "expired"
			}
			if user := resolveUserFromRecord(rec); user != "" {
				_, _ = fmt.Fprintf(rt.Writer(), "Authenticated as %s (%s, expires %s)\n",
					user, state, rec.Expiry().UTC().Format(time.RFC3339))
				return nil
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Authenticated (%s, expires %s)\n",
				state, rec.Expiry().UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove cached token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			ctxCfg, err := rt.ResolveContext()
			if err != nil {
				return err
			}
			store, err := tokenStore(rt, ctxCfg)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token",
		Long:  "Print a valid access token to stdout, authenticating first if needed. Intended for scripting.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			ctxCfg, err := rt.ResolveContext()
			if err != nil {
				return err
			}
			authenticator, err := buildAuthenticator(rt, ctxCfg)
			if err != nil {
				return err
			}
			token, err := authenticator.Token(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), token)
			return nil
		},
	}
}
