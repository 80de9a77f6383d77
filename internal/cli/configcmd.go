package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage asbuilt configuration",
		Long:  `View and manage asbuilt configuration.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration with source annotations",
		Long: `Show the fully resolved configuration with annotations indicating
where each value came from.

Configuration is loaded from multiple sources with the following precedence:
  1. Embedded defaults (built into binary)
  2. Global config (~/.config/asbuilt/config.yaml)
  3. Environment variables (ASBUILT_*)
  4. Local config (.asbuilt/config.yaml)
  5. CLI flags (highest precedence)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			runConfigShow(a)
			return nil
		},
	})
	return cmd
}

func runConfigShow(a *app) {
	cfg := a.cfg
	out := a.out

	out.Printf("# asbuilt Configuration\n\n")
	out.Printf("## Sources (in order of precedence)\n")
	for _, src := range cfg.Sources() {
		out.Printf("  - %s\n", src)
	}
	out.Printf("\n")

	out.Printf("## Directories\n")
	out.Printf("  Global config: %s\n", cfg.ConfigDir())
	if cfg.LocalDir() != "" {
		out.Printf("  Local config:  %s\n", cfg.LocalDir())
	} else {
		out.Printf("  Local config:  (none detected)\n")
	}
	out.Printf("  Utilities:     %s\n", cfg.UtilitiesPath())
	out.Printf("  Sessions:      %s\n", cfg.SessionsPath())
	out.Printf("  Outbox:        %s\n", cfg.OutboxPath())
	out.Printf("  Logs:          %s\n", cfg.LogsPath())
	out.Printf("\n")

	out.Printf("## Defaults\n")
	out.Printf("  default_utility: %s\n", orNone(cfg.DefaultUtility))
	out.Printf("  user_lan_id:     %s\n", orNone(cfg.UserLanID))
	out.Printf("\n")

	out.Printf("## Wizard Settings\n")
	out.Printf("  auto_prefill:  %t\n", cfg.Wizard.AutoPrefill)
	out.Printf("  show_warnings: %t\n", cfg.Wizard.ShowWarnings)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return fmt.Sprintf("%q", s)
}
