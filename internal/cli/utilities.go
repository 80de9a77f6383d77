package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/asbuilt/internal/utility"
)

func newUtilitiesCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utilities",
		Short: "List available utility configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			return runUtilities(a)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a utility configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			cfg, err := utility.LoadFile(args[0])
			if err != nil {
				return err
			}
			a.out.Printf("%s: ok (%d work types, %d documents, %d rules)\n",
				cfg.UtilityCode, len(cfg.WorkTypes), len(cfg.DocumentCompletions), len(cfg.ValidationRules))
			return nil
		},
	})
	return cmd
}

func runUtilities(a *app) error {
	dir := a.cfg.UtilitiesPath()
	entries, err := utility.List(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.out.Printf("No utility configurations found in %s\n", dir)
		return nil
	}

	a.out.Title(fmt.Sprintf("Utilities (%s)", dir))
	for _, e := range entries {
		if e.Err != nil {
			a.out.Printf("  %-10s %s\n", e.Code, a.out.style(styleError, "invalid: "+e.Err.Error()))
			continue
		}
		marker := " "
		if e.Code == a.cfg.DefaultUtility {
			marker = "*"
		}
		a.out.Printf("%s %-10s %-32s %d work types\n", marker, e.Code, e.Name, e.WorkTypes)
	}
	return nil
}
