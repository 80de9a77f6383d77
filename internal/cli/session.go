package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/engine"
	"github.com/alexander-akhmetov/asbuilt/internal/review"
	"github.com/alexander-akhmetov/asbuilt/internal/store"
	"github.com/alexander-akhmetov/asbuilt/internal/wizard"
)

func newSessionCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Drive a saved wizard session step by step",
		Long: `Drive a saved wizard session from the command line. Sessions are stored in the
sessions directory and addressed by id or a unique id prefix.`,
	}

	cmd.AddCommand(
		newSessionStartCmd(opts),
		newSessionSelectCmd(opts),
		newSessionCompleteCmd(opts),
		newSessionNavCmd(opts, "goto <id> <step>", "Make a step the active step", 2),
		newSessionNavCmd(opts, "next <id>", "Move to the next step without completing the current one", 1),
		newSessionNavCmd(opts, "back <id>", "Move to the previous step", 1),
		newSessionStatusCmd(opts),
		newSessionValidateCmd(opts),
		newSessionReviewCmd(opts),
		newSessionSubmitCmd(opts),
		newSessionListCmd(opts),
		newSessionRmCmd(opts),
	)
	return cmd
}

// withSession opens the session named by args[0], runs fn and closes it.
func withSession(cmd *cobra.Command, opts *globalOptions, id string, fn func(*sessionHost) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	h, err := a.openSession(id)
	if err != nil {
		return err
	}
	defer h.close()
	return fn(h)
}

func newSessionStartCmd(opts *globalOptions) *cobra.Command {
	var contextPath, workType string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new session",
		Example: `  asbuilt session start -u pge --context job.yaml
  asbuilt session start -u pge --context job.yaml --work-type estimated`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			h, err := a.startSession(contextPath, workType)
			if err != nil {
				return err
			}
			defer h.close()

			a.out.Printf("Started session %s\n", h.rec.ID)
			printStatus(h)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextPath, "context", "c", "", "Job/user context document (YAML or JSON)")
	cmd.Flags().StringVarP(&workType, "work-type", "w", "", "Select this work type right away")
	return cmd
}

func newSessionSelectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id> <work-type>",
		Short: "Select the work type; changing it clears completed steps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				if err := h.sess.SelectWorkType(args[1]); err != nil {
					return err
				}
				return h.save()
			})
		},
	}
}

func newSessionCompleteCmd(opts *globalOptions) *cobra.Command {
	var (
		sets            []string
		dataFile        string
		noPrefill       bool
		builtAsDesigned bool
	)

	cmd := &cobra.Command{
		Use:   "complete <id> [step]",
		Short: "Mark a step complete (default: the active step)",
		Long: `Mark a step complete and advance to the next one. Captured data starts from
the step's prefilled values (unless --no-prefill or auto_prefill is off), then
the contents of --data, then each --set key=value. Values are parsed as YAML
scalars, so numbers and booleans keep their type.`,
		Example: `  asbuilt session complete 3f2a ec_tag --set ecTag=EC-4455
  asbuilt session complete 3f2a sketch_markup --built-as-designed
  asbuilt session complete 3f2a billing_form --data billing.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				key := h.sess.ActiveStep().Key
				if len(args) == 2 {
					key = domain.StepKey(args[1])
				}

				data := map[string]any{}
				if h.app.cfg.Wizard.AutoPrefill && !noPrefill {
					maps.Copy(data, h.sess.Prefill(key))
				}
				if dataFile != "" {
					fromFile, err := readDataFile(dataFile)
					if err != nil {
						return err
					}
					maps.Copy(data, fromFile)
				}
				for _, kv := range sets {
					k, v, err := parseSet(kv)
					if err != nil {
						return err
					}
					data[k] = v
				}
				if builtAsDesigned {
					if err := checkBuiltAsDesigned(h.sess, key); err != nil {
						return err
					}
					data[engine.BuiltAsDesignedKey] = true
				}

				if err := h.sess.MarkComplete(key, data); err != nil {
					return err
				}
				return h.save()
			})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Captured value as key=value (repeatable)")
	cmd.Flags().StringVar(&dataFile, "data", "", "YAML or JSON file with captured values")
	cmd.Flags().BoolVar(&noPrefill, "no-prefill", false, "Do not start from prefilled values")
	cmd.Flags().BoolVar(&builtAsDesigned, "built-as-designed", false, "Mark the construction sketch Built As Designed")
	return cmd
}

func checkBuiltAsDesigned(sess *wizard.Session, key domain.StepKey) error {
	if key != domain.StepSketchMarkup {
		return fmt.Errorf("--built-as-designed applies to the %s step only", domain.StepSketchMarkup)
	}
	if wt := sess.WorkType(); wt != nil && !wt.AllowBuiltAsDesigned {
		return fmt.Errorf("work type %s does not allow Built As Designed", wt.Code)
	}
	return nil
}

func readDataFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // user-supplied data file
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return data, nil
}

// parseSet splits key=value and decodes the value as a YAML scalar.
func parseSet(kv string) (string, any, error) {
	k, raw, ok := strings.Cut(kv, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", nil, fmt.Errorf("invalid --set %q: want key=value", kv)
	}
	if raw == "" {
		return k, "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return k, raw, nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return k, raw, nil
	case int, float64:
		// Identifiers such as 0042 keep their leading zeros.
		if len(raw) > 1 && raw[0] == '0' && raw[1] != '.' {
			return k, raw, nil
		}
	}
	return k, v, nil
}

func newSessionNavCmd(opts *globalOptions, use, short string, nargs int) *cobra.Command {
	verb, _, _ := strings.Cut(use, " ")
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				switch verb {
				case "goto":
					if err := h.sess.GoTo(domain.StepKey(args[1])); err != nil {
						return err
					}
				case "next":
					h.sess.Next()
				case "back":
					h.sess.Back()
				}
				return h.save()
			})
		},
	}
}

func newSessionStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show steps, validation and the active step's prefill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				printStatus(h)
				return nil
			})
		},
	}
}

func printStatus(h *sessionHost) {
	out := h.app.out
	sess := h.sess

	out.Title("Session " + h.rec.ID)
	out.Field("Utility", h.rec.UtilityCode)
	if wt := sess.WorkType(); wt != nil {
		out.Field("Work type", fmt.Sprintf("%s (%s)", wt.Label, wt.Code))
	} else {
		out.Field("Work type", "(not selected)")
	}
	if ctx := sess.Context(); ctx != nil && ctx.Job != nil {
		out.Field("Job", ctx.Job.ID)
	}
	if sub := sess.Submitted(); sub != nil {
		out.Field("Submitted", sub.SubmittedAt)
	}
	out.Printf("\n")

	out.Steps(sess.Steps(), sess.IsComplete, sess.ActiveIndex())
	out.Printf("\n")
	out.Validation(sess.Validation(), h.app.cfg.Wizard.ShowWarnings)

	active := sess.ActiveStep()
	prefill := sess.Prefill(active.Key)
	if active.Description == "" && len(prefill) == 0 {
		return
	}
	out.Printf("\n")
	out.Title(active.Label)
	if active.Description != "" {
		out.Printf("  %s\n", active.Description)
	}
	for _, k := range sortedKeys(prefill) {
		b, _ := json.Marshal(prefill[k])
		out.Field(k, string(b))
	}
}

func newSessionValidateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <id>",
		Short: "Run the validation gate; exits non-zero while blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				res := h.sess.Validation()
				h.app.out.Validation(res, h.app.cfg.Wizard.ShowWarnings)
				if h.log != nil {
					h.log.Validation(res)
				}
				if !res.Valid {
					return &wizard.NotReadyError{Errors: res.Errors}
				}
				return nil
			})
		},
	}
}

func newSessionReviewCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "review <id>",
		Short: "Render the review summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				text, err := review.Render(h.app.cfg.Templates.Review, review.Build(h.sess, h.app.cfg.Wizard.ShowWarnings))
				if err != nil {
					return err
				}
				h.app.out.Markdown(text)
				return nil
			})
		},
	}
}

func newSessionSubmitCmd(opts *globalOptions) *cobra.Command {
	var printJSON bool

	cmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit the package to the outbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, args[0], func(h *sessionHost) error {
				return submitSession(h, printJSON)
			})
		},
	}

	cmd.Flags().BoolVarP(&printJSON, "print", "p", false, "Print the submission JSON")
	return cmd
}

func submitSession(h *sessionHost, printJSON bool) error {
	out := h.app.out
	sub, err := h.sess.Submit()
	if err != nil {
		var notReady *wizard.NotReadyError
		if errors.As(err, &notReady) {
			out.Validation(h.sess.Validation(), h.app.cfg.Wizard.ShowWarnings)
			if h.log != nil {
				h.log.Errorf("submit blocked: %s", strings.Join(notReady.Errors, "; "))
			}
		}
		return err
	}

	path, err := store.WriteOutbox(h.app.cfg.OutboxPath(), sub, store.OutboxMeta{
		SessionID: h.rec.ID,
		Warnings:  h.sess.Validation().Warnings,
	})
	if err != nil {
		return err
	}
	if err := h.save(); err != nil {
		return err
	}
	if h.log != nil {
		h.log.Printf("Outbox: %s", path)
		h.log.Exit("submitted", h.sess.CompletedKeys())
	}

	out.Printf("Wrote %s\n", path)
	if printJSON {
		b, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("marshal submission: %w", err)
		}
		b = pretty.Pretty(b)
		if out.IsTTY() {
			b = pretty.Color(b, nil)
		}
		out.Printf("%s", b)
	}
	return nil
}

func newSessionListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			sums, err := a.store().List()
			if err != nil {
				return err
			}
			if len(sums) == 0 {
				a.out.Printf("No saved sessions in %s\n", a.store().Dir())
				return nil
			}
			a.out.Printf("%-8s  %-8s  %-16s  %-12s  %5s  %-16s  %s\n", "ID", "UTILITY", "WORK TYPE", "JOB", "DONE", "UPDATED", "STATE")
			for _, s := range sums {
				state := "open"
				if s.Submitted {
					state = a.out.style(styleDone, "submitted")
				}
				wt := s.WorkType
				if wt == "" {
					wt = "-"
				}
				a.out.Printf("%-8s  %-8s  %-16s  %-12s  %5d  %-16s  %s\n",
					shortID(s.ID), s.UtilityCode, wt, s.JobID, s.Completed,
					s.UpdatedAt.Local().Format("2006-01-02 15:04"), state)
			}
			return nil
		},
	}
}

func newSessionRmCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete saved sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			var errs []error
			for _, id := range args {
				if err := a.store().Delete(id); err != nil {
					errs = append(errs, err)
					continue
				}
				a.out.Printf("Deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
}
