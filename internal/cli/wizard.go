package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/store"
	"github.com/alexander-akhmetov/asbuilt/internal/tui"
)

func newWizardCmd(opts *globalOptions) *cobra.Command {
	var contextPath, workType string

	cmd := &cobra.Command{
		Use:   "wizard [session-id]",
		Short: "Run the interactive wizard",
		Long: `Run the interactive terminal wizard. Without a session id a new session is
started for the selected utility; with one, the saved session is resumed.
Every change is saved as it happens.

Controls:
  ↑/↓    - Move between steps
  enter  - Complete the active step with its prefilled values
  b      - Mark the construction sketch Built As Designed
  w      - Change the work type
  r      - Show the review summary
  s      - Submit to the outbox
  q      - Quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			var h *sessionHost
			if len(args) == 1 {
				h, err = a.openSession(args[0])
			} else {
				h, err = a.startSession(contextPath, workType)
			}
			if err != nil {
				return err
			}
			defer h.close()
			// Events go to the log and the TUI feed, not stdout.
			h.echo = false

			feed := tui.NewFeed()
			h.extra = feed.Handle

			model := tui.NewModel(h.sess, feed, tui.Options{
				AutoPrefill:    a.cfg.Wizard.AutoPrefill,
				ShowWarnings:   a.cfg.Wizard.ShowWarnings,
				ReviewTemplate: a.cfg.Templates.Review,
				Persist:        h.save,
				Deliver: func(sub *domain.Submission) (string, error) {
					path, err := store.WriteOutbox(a.cfg.OutboxPath(), sub, store.OutboxMeta{
						SessionID: h.rec.ID,
						Warnings:  h.sess.Validation().Warnings,
					})
					if err != nil {
						return "", err
					}
					if h.log != nil {
						h.log.Printf("Outbox: %s", path)
					}
					return path, nil
				},
			})
			if err := tui.Run(model); err != nil {
				return err
			}

			outcome := "open"
			if h.sess.Submitted() != nil {
				outcome = "submitted"
			}
			if h.log != nil {
				h.log.Exit(outcome, h.sess.CompletedKeys())
			}
			a.out.Printf("Session %s saved (%s)\n", h.rec.ID, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextPath, "context", "c", "", "Job/user context document for a new session")
	cmd.Flags().StringVarP(&workType, "work-type", "w", "", "Work type for a new session")
	return cmd
}
