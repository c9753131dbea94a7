package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lelloman/storectl/pkg/storectl/output"
)

func NewAppsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Browse and manage the store catalog",
	}
	cmd.AddCommand(
		newAppsListCommand(),
		newAppsGetCommand(),
		newAppsDeleteCommand(),
	)
	return cmd
}

func newAppsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published apps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			apps, err := c.Apps().List(cmd.Context())
			if err != nil {
				return err
			}
			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatTable:
				output.WriteAppTable(rt.Writer(), apps)
				return nil
			case output.FormatWide:
				output.WriteAppTableWide(rt.Writer(), apps)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, apps)
			}
		},
	}
}

func newAppsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PACKAGE",
		Short: "Show an app and its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			detail, err := c.Apps().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch format := output.Format(rt.OutputFormat()); format {
			case output.FormatTable, output.FormatWide:
				_, _ = fmt.Fprintf(rt.Writer(), "%s (%s)\n", detail.Name, detail.PackageName)
				if detail.Description != "" {
					_, _ = fmt.Fprintln(rt.Writer(), detail.Description)
				}
				_, _ = fmt.Fprintln(rt.Writer())
				output.WriteVersionTable(rt.Writer(), detail.Versions)
				return nil
			default:
				return output.WriteObject(rt.Writer(), format, detail)
			}
		},
	}
}

func newAppsDeleteCommand() *cobra.Command {
	var versionCode int64

	cmd := &cobra.Command{
		Use:   "delete PACKAGE",
		Short: "Delete an app or a single version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			c, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			packageName := args[0]
			if versionCode > 0 {
				if err := c.Apps().DeleteVersion(cmd.Context(), packageName, versionCode); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(rt.Writer(), "Deleted %s version code %d\n", packageName, versionCode)
				return nil
			}
			if err := c.Apps().Delete(cmd.Context(), packageName); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Deleted %s\n", packageName)
			return nil
		},
	}

	cmd.Flags().Int64Var(&versionCode, "version-code", 0, "Delete only this version code")

	return cmd
}
