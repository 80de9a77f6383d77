package progress

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexander-akhmetov/asbuilt/internal/dirs"
)

// LogFile represents a session log file.
type LogFile struct {
	Path      string
	SessionID string
	Timestamp time.Time
}

// FindLogs finds log files in the logs directory, optionally filtered by
// session ID substring. Files are returned sorted by timestamp, newest first.
func FindLogs(logsDir, sessionID string) ([]LogFile, error) {
	if logsDir == "" {
		logsDir = dirs.LogsDir()
	}

	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []LogFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		lf := parseLogFilename(logsDir, entry.Name())
		if lf == nil {
			continue
		}

		if sessionID != "" && !strings.Contains(strings.ToLower(lf.SessionID), strings.ToLower(sessionID)) {
			continue
		}

		logs = append(logs, *lf)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	return logs, nil
}

// FindLatestLog finds the most recent log file for a session ID.
func FindLatestLog(logsDir, sessionID string) (*LogFile, error) {
	logs, err := FindLogs(logsDir, sessionID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// parseLogFilename parses a log filename into a LogFile.
// Expected format: YYYYMMDD-HHMMSS-<session-id>.log
func parseLogFilename(dir, name string) *LogFile {
	base := strings.TrimSuffix(name, ".log")

	// YYYYMMDD-HHMMSS plus the separating dash
	if len(base) < 16 {
		return nil
	}

	t, err := time.Parse("20060102-150405", base[:15])
	if err != nil {
		return nil
	}

	return &LogFile{
		Path:      filepath.Join(dir, name),
		SessionID: base[16:],
		Timestamp: t,
	}
}
