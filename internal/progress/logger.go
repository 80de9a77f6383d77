// Package progress provides a persistent timestamped audit log for wizard
// sessions. Every session writes a log file to the logs directory recording
// work-type selection, step completions, navigation, validation changes and
// the final submission.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alexander-akhmetov/asbuilt/internal/dirs"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
)

// timestampFormat is the format for log timestamps.
const timestampFormat = "2006-01-02 15:04:05"

// Logger writes timestamped progress to a log file and optional io.Writer.
// It is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	writer    io.Writer // optional additional writer (e.g., for CLI output)
	startTime time.Time
	sessionID string
	logPath   string
}

// Config holds logger configuration.
type Config struct {
	LogsDir     string    // Directory for log files (default: dirs.LogsDir())
	SessionID   string    // Wizard session identifier
	UtilityCode string    // Utility whose configuration drives the session
	JobID       string    // Job identifier from the host context, if any
	Writer      io.Writer // Optional additional writer for live output
	Resume      bool      // Append to the session's latest log file when one exists
}

// NewLogger creates a logger that writes to a timestamped log file.
// Log files are stored in LogsDir with format: <timestamp>-<session-id>.log
func NewLogger(cfg Config) (*Logger, error) {
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	var logPath string
	resumed := false
	if cfg.Resume {
		if lf, err := FindLatestLog(logsDir, sanitizeFilename(cfg.SessionID)); err == nil && lf != nil && lf.SessionID == sanitizeFilename(cfg.SessionID) {
			logPath = lf.Path
			resumed = true
		}
	}
	if logPath == "" {
		timestamp := time.Now().Format("20060102-150405")
		logPath = filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", timestamp, sanitizeFilename(cfg.SessionID)))
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	l := &Logger{
		file:      f,
		writer:    cfg.Writer,
		startTime: time.Now(),
		sessionID: cfg.SessionID,
		logPath:   logPath,
	}

	if resumed {
		l.Section("Resumed " + time.Now().Format(timestampFormat))
		return l, nil
	}

	l.writef("# As-Built Session Log\n")
	l.writef("Session: %s\n", cfg.SessionID)
	l.writef("Utility: %s\n", cfg.UtilityCode)
	if cfg.JobID != "" {
		l.writef("Job: %s\n", cfg.JobID)
	}
	l.writef("Started: %s\n", time.Now().Format(timestampFormat))
	l.writef("%s\n\n", strings.Repeat("-", 60))

	return l, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.logPath
}

// SessionID returns the session identifier.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Printf writes a timestamped message to the log.
func (l *Logger) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)
	l.writef("[%s] %s\n", timestamp, msg)
}

// Section writes a section header to the log.
func (l *Logger) Section(title string) {
	l.writef("\n--- %s ---\n", title)
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(timestampFormat)
	l.writef("[%s] ERROR: %s\n", timestamp, msg)
}

// Handle records a session event. It satisfies event.Handler.
func (l *Logger) Handle(e event.Event) {
	switch e.Kind {
	case event.KindWorkTypeSelected:
		l.Section("Work type " + e.Text)
	case event.KindStepCompleted:
		l.Printf("Step completed: %s", e.Step)
	case event.KindNavigated:
		l.Printf("Active step: %s", e.Step)
	case event.KindValidation:
		l.Printf("Validation: %s", e.Text)
	case event.KindSubmitted:
		l.Printf("Submitted: %s", e.Text)
	case event.KindReset:
		l.Printf("Reset: %s", e.Text)
	}
}

// Validation logs a full validation result.
func (l *Logger) Validation(res domain.ValidationResult) {
	if res.Valid {
		l.Printf("Validation PASSED (%d warnings)", len(res.Warnings))
	} else {
		l.Printf("Validation found %d errors", len(res.Errors))
	}
	for _, e := range res.Errors {
		l.Printf("  error: %s", e)
	}
	for _, w := range res.Warnings {
		l.Printf("  warning: %s", w)
	}
}

// Exit logs the session outcome and duration.
func (l *Logger) Exit(outcome string, completed []domain.StepKey) {
	l.writef("\n%s\n", strings.Repeat("-", 60))
	l.writef("Outcome: %s\n", outcome)
	if len(completed) > 0 {
		keys := make([]string, len(completed))
		for i, k := range completed {
			keys[i] = string(k)
		}
		l.writef("Completed steps (%d): %s\n", len(keys), strings.Join(keys, ", "))
	}
	l.writef("Duration: %s\n", l.elapsed())
	l.writef("Finished: %s\n", time.Now().Format(timestampFormat))
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func (l *Logger) writef(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		fmt.Fprintf(l.file, format, args...)
	}
	if l.writer != nil {
		fmt.Fprintf(l.writer, format, args...)
	}
}

func (l *Logger) elapsed() string {
	d := time.Since(l.startTime).Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// sanitizeFilename converts a session ID to a safe filename component.
func sanitizeFilename(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-").Replace(s)

	var clean strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			clean.WriteRune(r)
		}
	}
	result := clean.String()

	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if len(result) > 100 {
		result = strings.TrimRight(result[:100], "-")
	}

	if result == "" {
		return "unnamed"
	}
	return result
}
