package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/lelloman/storectl/pkg/storectl/client"
)

func WriteAppTable(w io.Writer, apps []client.AppListItem) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PACKAGE\tNAME\tVERSION\tSIZE")
	for _, a := range apps {
		version := "-"
		size := "-"
		if a.LatestVersion != nil {
			version = a.LatestVersion.VersionName
			size = formatSize(a.LatestVersion.Size)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.PackageName, a.Name, version, size)
	}
	_ = tw.Flush()
}

func WriteAppTableWide(w io.Writer, apps []client.AppListItem) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PACKAGE\tNAME\tVERSION\tVERSION_CODE\tSIZE\tDESCRIPTION")
	for _, a := range apps {
		version := "-"
		versionCode := "-"
		size := "-"
		if a.LatestVersion != nil {
			version = a.LatestVersion.VersionName
			versionCode = fmt.Sprintf("%d", a.LatestVersion.VersionCode)
			size = formatSize(a.LatestVersion.Size)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", a.PackageName, a.Name, version, versionCode, size, a.Description)
	}
	_ = tw.Flush()
}

func WriteVersionTable(w io.Writer, versions []client.AppVersionInfo) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tVERSION_CODE\tMIN_SDK\tSIZE\tUPLOADED")
	for _, v := range versions {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", v.VersionName, v.VersionCode, v.MinSDK, formatSize(v.Size), formatTimestamp(v.UploadedAt))
	}
	_ = tw.Flush()
}

func formatSize(size int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case size >= mib:
		return fmt.Sprintf("%.1f MiB", float64(size)/mib)
	case size >= kib:
		return fmt.Sprintf("%.1f KiB", float64(size)/kib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func formatTimestamp(raw string) string {
	if raw == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}
