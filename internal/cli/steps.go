package cli

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

func newStepsCmd(opts *globalOptions) *cobra.Command {
	var compare string

	cmd := &cobra.Command{
		Use:   "steps [work-type]",
		Short: "Show the steps derived for a work type",
		Long: `Show the wizard steps derived for a work type of the selected utility.

Without a work type, lists the utility's work types. With --compare, prints a
unified diff between the step lists of two work types.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			cfg, err := a.utilityConfig("")
			if err != nil {
				return err
			}

			if len(args) == 0 {
				a.out.Title("Work types for " + cfg.UtilityCode)
				for _, wt := range cfg.WorkTypes {
					a.out.Printf("  %-20s %s\n", wt.Code, wt.Label)
				}
				return nil
			}

			from, err := deriveFor(cfg, args[0])
			if err != nil {
				return err
			}
			if compare == "" {
				a.out.Title(fmt.Sprintf("Steps for %s/%s", cfg.UtilityCode, args[0]))
				a.out.Steps(from, nil, -1)
				return nil
			}

			to, err := deriveFor(cfg, compare)
			if err != nil {
				return err
			}
			diff := udiff.Unified(args[0], compare, stepLines(from), stepLines(to))
			if diff == "" {
				a.out.Printf("%s and %s derive the same steps\n", args[0], compare)
				return nil
			}
			a.out.Diff(diff)
			return nil
		},
	}

	cmd.Flags().StringVar(&compare, "compare", "", "Work type to diff the step list against")
	return cmd
}

func deriveFor(cfg *domain.UtilityConfiguration, code string) ([]domain.Step, error) {
	wt := cfg.WorkType(code)
	if wt == nil {
		return nil, fmt.Errorf("%w: %q", wizard.ErrUnknownWorkType, code)
	}
	return engine.DeriveSteps(cfg, wt), nil
}

func stepLines(steps []domain.Step) string {
	var b strings.Builder
	for _, st := range steps {
		fmt.Fprintf(&b, "%s\t%s\n", st.Key, st.Label)
	}
	return b.String()
}
