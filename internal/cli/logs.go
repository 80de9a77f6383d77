package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/asbuilt/internal/progress"
)

func newLogsCmd(opts *globalOptions) *cobra.Command {
	var (
		list   bool
		recent int
	)

	cmd := &cobra.Command{
		Use:   "logs [session-id]",
		Short: "Show session audit logs",
		Long: `Show the audit log of a wizard session. Every session appends to its own log
file under the logs directory.

Examples:
  asbuilt logs 3f2a        # Show the log of a session
  asbuilt logs -l          # List recent log files`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			dir := a.cfg.LogsPath()
			if list || len(args) == 0 {
				return listLogs(a, dir, "", recent)
			}
			return showLog(a, dir, args[0])
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List recent log files")
	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent logs to show")
	return cmd
}

func listLogs(a *app, logsDir, filter string, recent int) error {
	logs, err := progress.FindLogs(logsDir, filter)
	if err != nil {
		return fmt.Errorf("failed to find logs: %w", err)
	}
	if len(logs) == 0 {
		a.out.Printf("No log files found.\nLog directory: %s\n", logsDir)
		return nil
	}

	a.out.Printf("Recent log files (showing %d):\n", min(recent, len(logs)))
	a.out.Printf("%s\n", strings.Repeat("-", 60))
	for i, lf := range logs {
		if i >= recent {
			break
		}
		a.out.Printf("  %s  %s\n", lf.Timestamp.Format("2006-01-02 15:04:05"), lf.SessionID)
		a.out.Printf("    %s\n", lf.Path)
	}
	return nil
}

func showLog(a *app, logsDir, sessionID string) error {
	lf, err := progress.FindLatestLog(logsDir, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find log: %w", err)
	}
	if lf == nil {
		a.out.Printf("No logs found for session: %s\n", sessionID)
		a.out.Printf("Tip: Use 'asbuilt logs -l' to list all logs\n")
		return nil
	}

	data, err := os.ReadFile(lf.Path)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	a.out.Printf("%s", data)
	return nil
}
