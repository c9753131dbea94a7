package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lelloman/storectl/pkg/storectl/client"
	"github.com/lelloman/storectl/pkg/storectl/output"
)

func NewPublishCommand() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Upload a build to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			if err := validateArtifact(path); err != nil {
				return err
			}

			c, err := buildClient(cmd.Context(), rt)
			if err != nil {
				return err
			}
			result, err := c.Apps().Upload(cmd.Context(), client.UploadRequest{
				Path:        path,
				Name:        name,
				Description: description,
			})
			if err != nil {
				return publishError(rt, err)
			}

			format := output.Format(rt.OutputFormat())
			if format == output.FormatJSON || format == output.FormatYAML {
				return output.WriteObject(rt.Writer(), format, result)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Published %s %s (version code %d)\n",
				result.PackageName, result.Version.VersionName, result.Version.VersionCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name for the app")
	cmd.Flags().StringVar(&description, "description", "", "Description for the app")

	return cmd
}

func validateArtifact(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".apk", ".aab":
	default:
		return fmt.Errorf("unsupported artifact type %q: expected .apk or .aab", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}

// publishError turns store rejections into actionable messages.
func publishError(rt *runtimeState, err error) error {
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	switch httpErr.StatusCode {
	case http.StatusUnauthorized:
		ctxCfg, ctxErr := rt.ResolveContext()
		if ctxErr == nil {
			return fmt.Errorf("authentication rejected: %s\nThe cached token at %s may be stale; run 'storectl auth logout' and retry",
				httpErr.Message, tokenFilePath(ctxCfg.Name))
		}
		return fmt.Errorf("authentication rejected: %s\nRun 'storectl auth logout' and retry", httpErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("permission denied: %s\nPublishing requires the store admin role", httpErr.Message)
	case http.StatusConflict:
		return fmt.Errorf("version already published: %s\nBump versionCode and rebuild", httpErr.Message)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("artifact too large: %s", httpErr.Message)
	default:
		return err
	}
}
