package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/asbuilt/internal/autofill"
	"github.com/alexander-akhmetov/asbuilt/internal/scope"
)

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var contextPath string

	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Resolve auto-fill paths against a job context",
		Long: `Resolve auto-fill paths such as job.pmNumber, user.lanId or today against a
job/user context document. Paths that do not resolve are reported as
unresolved; utility-specific values are reachable through the extras bags,
e.g. job.circuit.id.`,
		Example: `  asbuilt resolve job.pmNumber job.ecTag today --context job.yaml`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			ctx, err := a.jobContext(contextPath)
			if err != nil {
				return err
			}

			r := autofill.New()
			for _, path := range args {
				if v, ok := r.ResolveString(path, ctx); ok {
					a.out.Field(path, v)
				} else {
					a.out.Field(path, a.out.style(styleLabel, "(unresolved)"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextPath, "context", "c", "", "Job/user context document (YAML or JSON)")
	return cmd
}

func newScopeCmd(opts *globalOptions) *cobra.Command {
	var contextPath string

	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Detect the equipment scope of a job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			ctx, err := a.jobContext(contextPath)
			if err != nil {
				return err
			}

			sc := scope.Detect(ctx.Job)
			a.out.Title("Equipment scope")
			for _, c := range sc.Categories() {
				a.out.Printf("  - %s\n", c)
			}
			a.out.Title("Attribute sections")
			for _, s := range scope.AttributeSections(sc) {
				a.out.Printf("  - %s\n", s)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextPath, "context", "c", "", "Job/user context document (YAML or JSON)")
	return cmd
}
