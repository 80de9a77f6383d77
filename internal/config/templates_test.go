package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_Embedded(t *testing.T) {
	templates, err := LoadTemplates("", "")
	require.NoError(t, err)
	require.NotNil(t, templates)

	assert.Contains(t, templates.Review, "{{.Title}}")
	assert.Contains(t, templates.Review, "{{range .Steps}}")
}

func TestLoadTemplates_GlobalOverride(t *testing.T) {
	globalDir := t.TempDir()
	dir := filepath.Join(globalDir, "templates")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.md"), []byte("Custom {{.Title}}\r\n"), 0o644))

	templates, err := LoadTemplates(globalDir, "")
	require.NoError(t, err)
	assert.Equal(t, "Custom {{.Title}}", templates.Review)
}

func TestLoadTemplates_LocalOverridesGlobal(t *testing.T) {
	globalDir := t.TempDir()
	localDir := t.TempDir()
	for dir, body := range map[string]string{globalDir: "global", localDir: "local"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "review.md"), []byte(body), 0o644))
	}

	templates, err := LoadTemplates(globalDir, localDir)
	require.NoError(t, err)
	assert.Equal(t, "local", templates.Review)
}

func TestLoadTemplates_EmptyFileFallsBack(t *testing.T) {
	globalDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(globalDir, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "templates", "review.md"), []byte("  \n"), 0o644))

	templates, err := LoadTemplates(globalDir, "")
	require.NoError(t, err)
	assert.Contains(t, templates.Review, "{{.Title}}")
}

func TestLoadTemplates_NonexistentGlobalFallsToEmbedded(t *testing.T) {
	templates, err := LoadTemplates("/nonexistent/global/dir", "")
	require.NoError(t, err)
	assert.NotEmpty(t, templates.Review)
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb", normalizeNewlines("a\r\nb"))
	assert.Equal(t, "a\nb", normalizeNewlines("a\nb"))
}
