package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lelloman/storectl/pkg/storectl/config"
	"github.com/lelloman/storectl/pkg/storectl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage storectl configuration",
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
		newConfigContextsCommand(),
		newConfigCurrentContextCommand(),
		newConfigSetContextCommand(),
		newConfigUseContextCommand(),
		newConfigSetValueCommand(),
		newConfigAddContextCommand(),
		newConfigDeleteContextCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		contextName  string
		server       string
		oidcIssuer   string
		oidcClientID string
		insecure     bool
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a storectl config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			if contextName == "" {
				contextName = "default"
			}
			if oidcIssuer == "" {
				return errors.New("oidc-issuer is required")
			}
			cfg := config.DefaultConfig()
			cfg.CurrentContext = contextName
			cfg.Contexts = append(cfg.Contexts, config.Context{
				Name:                  contextName,
				Server:                server,
				InsecureSkipTLSVerify: insecure,
				OIDC: config.OIDC{
					Issuer:   oidcIssuer,
					ClientID: oidcClientID,
				},
			})
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Initialized config at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextName, "context", "default", "Context name")
	cmd.Flags().StringVar(&server, "server", "", "Store server URL")
	cmd.Flags().StringVar(&oidcIssuer, "oidc-issuer", "", "OIDC issuer URL")
	cmd.Flags().StringVar(&oidcClientID, "oidc-client-id", "", "OIDC client ID (defaults to "+config.DefaultClientID+")")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip TLS verification")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")

	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			return output.WriteObject(rt.Writer(), output.FormatYAML, rt.cfg)
		},
	}
}

func newConfigContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "List configured contexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			current := rt.cfg.CurrentContext
			for _, ctx := range rt.cfg.Contexts {
				marker := " "
				if ctx.Name == current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(rt.Writer(), "%s %s\t%s\n", marker, ctx.Name, ctx.Server)
			}
			return nil
		},
	}
}

func newConfigSetContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-context NAME",
		Short: "Set the default context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err != nil {
				return err
			}
			rt.cfg.CurrentContext = name
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%s\n", name)
			return nil
		},
	}
}

func newConfigUseContextCommand() *cobra.Command {
	cmd := newConfigSetContextCommand()
	cmd.Use = "use-context NAME"
	cmd.Aliases = []string{"use"}
	cmd.Short = "Alias for set-context"
	return cmd
}

func newConfigCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Show the current context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), rt.cfg.CurrentContext)
			return nil
		},
	}
}

func newConfigSetValueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			key := args[0]
			value := args[1]
			switch key {
			case "settings.output-format":
				rt.cfg.Settings.OutputFormat = value
			case "settings.token-storage":
				rt.cfg.Settings.TokenStorage = value
			default:
				return fmt.Errorf("unsupported key: %s", key)
			}
			if err := rt.cfg.Validate(); err != nil {
				return err
			}
			return config.Save(rt.configPathValue(), rt.cfg)
		},
	}
}

func newConfigAddContextCommand() *cobra.Command {
	var (
		server       string
		oidcIssuer   string
		oidcClientID string
		insecure     bool
	)
	cmd := &cobra.Command{
		Use:   "add-context NAME",
		Short: "Add a new context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			if _, err := rt.cfg.FindContext(name); err == nil {
				return fmt.Errorf("context already exists: %s", name)
			}
			if oidcIssuer == "" {
				return errors.New("oidc-issuer is required")
			}
			rt.cfg.Contexts = append(rt.cfg.Contexts, config.Context{
				Name:                  name,
				Server:                server,
				InsecureSkipTLSVerify: insecure,
				OIDC: config.OIDC{
					Issuer:   oidcIssuer,
					ClientID: oidcClientID,
				},
			})
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Added context %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Store server URL")
	cmd.Flags().StringVar(&oidcIssuer, "oidc-issuer", "", "OIDC issuer URL")
	cmd.Flags().StringVar(&oidcClientID, "oidc-client-id", "", "OIDC client ID")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip TLS verification")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

func newConfigDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			name := args[0]
			contexts := rt.cfg.Contexts
			filtered := contexts[:0]
			found := false
			for _, ctx := range contexts {
				if ctx.Name == name {
					found = true
					continue
				}
				filtered = append(filtered, ctx)
			}
			if !found {
				return fmt.Errorf("context not found: %s", name)
			}
			rt.cfg.Contexts = filtered
			if rt.cfg.CurrentContext == name {
				rt.cfg.CurrentContext = ""
			}
			if err := config.Save(rt.configPathValue(), rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted context %s\n", name)
			return nil
		},
	}
}
