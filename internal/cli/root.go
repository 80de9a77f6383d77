// Package cli implements the command-line interface for asbuilt.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	utility      string
	utilitiesDir string
	user         string
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "asbuilt",
		Short: "Step-by-step as-built package completion",
		Long: `asbuilt walks a field crew through completing the as-built package of a
utility job. The steps are derived from the utility's configuration and the
selected work type; a validation gate decides when the package may be
submitted, and submissions are written to an outbox for delivery.

Utility configurations live in ~/.config/asbuilt/utilities/<code>.yaml.`,
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.utility, "utility", "u", "", "Utility code (default: default_utility from config)")
	pf.StringVar(&opts.utilitiesDir, "utilities-dir", "", "Directory of utility configuration files")
	pf.StringVar(&opts.user, "user", "", "LAN id recorded as submitter when the context has no user")

	root.AddCommand(
		newUtilitiesCmd(opts),
		newStepsCmd(opts),
		newResolveCmd(opts),
		newScopeCmd(opts),
		newSessionCmd(opts),
		newWizardCmd(opts),
		newConfigCmd(opts),
		newLogsCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
