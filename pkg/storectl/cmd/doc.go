// Package cmd implements the cobra command tree for the storectl CLI,
// including subcommands for publishing builds, browsing the store catalog,
// authentication, configuration, and shell completion.
package cmd
