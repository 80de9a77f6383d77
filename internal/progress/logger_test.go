package progress

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/asbuilt/internal/domain"
	"github.com/alexander-akhmetov/asbuilt/internal/event"
)

func TestNewLogger(t *testing.T) {
	tmpDir := t.TempDir()
	var live bytes.Buffer

	logger, err := NewLogger(Config{
		LogsDir:     tmpDir,
		SessionID:   "job-42 session",
		UtilityCode: "pge",
		JobID:       "42",
		Writer:      &live,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Close()

	assert.FileExists(t, logger.Path())
	assert.Contains(t, logger.Path(), "job-42-session")
	assert.Equal(t, "job-42 session", logger.SessionID())

	logger.Handle(event.WorkTypeSelected("ec_corrective"))
	logger.Handle(event.StepCompleted("ec_tag"))
	logger.Handle(event.Navigated("equipment_info"))
	logger.Handle(event.Validation("1 error"))
	logger.Validation(domain.ValidationResult{Errors: []string{"Completion checklist required"}, Warnings: []string{}})
	logger.Errorf("Test error: %s", "something went wrong")
	logger.Handle(event.Submitted("outbox/x.json"))
	logger.Exit("submitted", []domain.StepKey{"ec_tag", "work_type"})

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# As-Built Session Log")
	assert.Contains(t, content, "Utility: pge")
	assert.Contains(t, content, "Job: 42")
	assert.Contains(t, content, "--- Work type ec_corrective ---")
	assert.Contains(t, content, "Step completed: ec_tag")
	assert.Contains(t, content, "Active step: equipment_info")
	assert.Contains(t, content, "Validation: 1 error")
	assert.Contains(t, content, "Validation found 1 errors")
	assert.Contains(t, content, "error: Completion checklist required")
	assert.Contains(t, content, "ERROR: Test error:")
	assert.Contains(t, content, "Submitted: outbox/x.json")
	assert.Contains(t, content, "Outcome: submitted")
	assert.Contains(t, content, "Completed steps (2): ec_tag, work_type")

	assert.Equal(t, content, live.String())
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple-id", "simple-id"},
		{"/path/to/file", "path-to-file"},
		{"has spaces here", "has-spaces-here"},
		{"has:colons:too", "has-colons-too"},
		{"special!@#$chars", "specialchars"},
		{"", "unnamed"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeFilename(tt.input))
		})
	}
}

func TestFindLogs(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		"20260129-120000-job-1.log",
		"20260129-130000-job-2.log",
		"20260129-140000-adhoc.log",
		"notes.txt",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("test"), 0o644))
	}

	logs, err := FindLogs(tmpDir, "")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "adhoc", logs[0].SessionID)
	assert.Equal(t, "job-2", logs[1].SessionID)
	assert.Equal(t, "job-1", logs[2].SessionID)

	logs, err = FindLogs(tmpDir, "JOB")
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = FindLogs(filepath.Join(tmpDir, "missing"), "")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestFindLatestLog(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "20260129-120000-my-session.log")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

	lf, err := FindLatestLog(tmpDir, "my-session")
	require.NoError(t, err)
	require.NotNil(t, lf)
	assert.Equal(t, "my-session", lf.SessionID)
	assert.Equal(t, path, lf.Path)

	lf, err = FindLatestLog(tmpDir, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, lf)
}

func TestParseLogFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		expectNil bool
		sessionID string
	}{
		{"valid", "20260129-120000-my-session.log", false, "my-session"},
		{"valid no session", "20260129-120000-.log", false, ""},
		{"too short", "short.log", true, ""},
		{"invalid timestamp", "invalid-timestamp-session.log", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseLogFilename("/tmp", tt.filename)
			if tt.expectNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, tt.sessionID, result.SessionID)
			}
		})
	}
}

func TestNewLogger_Resume(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := NewLogger(Config{LogsDir: tmpDir, SessionID: "abc123", UtilityCode: "pge", Resume: true})
	require.NoError(t, err)
	first.Printf("first run")
	require.NoError(t, first.Close())

	second, err := NewLogger(Config{LogsDir: tmpDir, SessionID: "abc123", UtilityCode: "pge", Resume: true})
	require.NoError(t, err)
	second.Printf("second run")
	require.NoError(t, second.Close())

	assert.Equal(t, first.Path(), second.Path())

	data, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, "# As-Built Session Log"))
	assert.Contains(t, content, "--- Resumed ")
	assert.Contains(t, content, "first run")
	assert.Contains(t, content, "second run")

	// A session whose id only contains another one's is not resumed into it.
	other, err := NewLogger(Config{LogsDir: tmpDir, SessionID: "abc", Resume: true})
	require.NoError(t, err)
	defer other.Close()
	assert.NotEqual(t, first.Path(), other.Path())
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	logger, err := NewLogger(Config{LogsDir: t.TempDir(), SessionID: "s1", UtilityCode: "pge"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				logger.Handle(event.StepCompleted("ec_tag"))
				logger.Printf("worker %d", i)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, logger.Close())
	logger.Printf("after close")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Equal(t, 8*20, strings.Count(string(data), "Step completed: ec_tag"))
	assert.NotContains(t, string(data), "after close")
}
