package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ASBUILT_UTILITIES_DIR", "ASBUILT_SESSIONS_DIR", "ASBUILT_OUTBOX_DIR",
		"ASBUILT_LOGS_DIR", "ASBUILT_UTILITY", "ASBUILT_USER",
		"ASBUILT_AUTO_PREFILL", "ASBUILT_SHOW_WARNINGS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadEmbedded(t *testing.T) {
	cfg, err := loadEmbedded()
	require.NoError(t, err)

	assert.Empty(t, cfg.UtilitiesDir)
	assert.Empty(t, cfg.DefaultUtility)
	assert.True(t, cfg.Wizard.AutoPrefill)
	assert.True(t, cfg.Wizard.ShowWarnings)
}

func TestLoadWithDirs_GlobalOnly(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(tmpDir, "config.yaml"),
		[]byte("default_utility: pge\nutilities_dir: /srv/utilities\n"),
		0o600,
	)
	require.NoError(t, err)

	cfg, err := LoadWithDirs(tmpDir, "")
	require.NoError(t, err)

	assert.Equal(t, "pge", cfg.DefaultUtility)
	assert.Equal(t, "/srv/utilities", cfg.UtilitiesPath())
	assert.True(t, cfg.Wizard.AutoPrefill) // from embedded default
	assert.Equal(t, tmpDir, cfg.ConfigDir())
	assert.Empty(t, cfg.LocalDir())
}

func TestLoadWithDirs_InstallsDefaults(t *testing.T) {
	clearEnv(t)
	tmpDir := filepath.Join(t.TempDir(), "asbuilt")

	_, err := LoadWithDirs(tmpDir, "")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(tmpDir, "config.yaml"))
	assert.DirExists(t, filepath.Join(tmpDir, "utilities"))
	assert.DirExists(t, filepath.Join(tmpDir, "templates"))
}

func TestLoadWithDirs_LocalOverridesGlobal(t *testing.T) {
	clearEnv(t)
	globalDir := t.TempDir()
	localDir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(globalDir, "config.yaml"),
		[]byte("default_utility: pge\nuser_lan_id: global\n"),
		0o600,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(localDir, "config.yaml"),
		[]byte("default_utility: sce\nwizard:\n  auto_prefill: false\n"),
		0o600,
	))

	cfg, err := LoadWithDirs(globalDir, localDir)
	require.NoError(t, err)

	assert.Equal(t, "sce", cfg.DefaultUtility)  // from local
	assert.Equal(t, "global", cfg.UserLanID)    // from global
	assert.False(t, cfg.Wizard.AutoPrefill)     // explicit false wins
	assert.True(t, cfg.Wizard.ShowWarnings)     // from embedded default
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASBUILT_UTILITY", "pge")
	t.Setenv("ASBUILT_OUTBOX_DIR", "/tmp/outbox")
	t.Setenv("ASBUILT_AUTO_PREFILL", "false")
	t.Setenv("ASBUILT_SHOW_WARNINGS", "not-a-bool")

	cfg, err := loadEmbedded()
	require.NoError(t, err)

	cfg.applyEnv()

	assert.Equal(t, "pge", cfg.DefaultUtility)
	assert.Equal(t, "/tmp/outbox", cfg.OutboxPath())
	assert.False(t, cfg.Wizard.AutoPrefill)
	assert.True(t, cfg.Wizard.AutoPrefillSet)
	assert.True(t, cfg.Wizard.ShowWarnings) // invalid value ignored
	assert.False(t, cfg.Wizard.ShowWarningsSet)
	assert.Contains(t, cfg.Sources(), "env:ASBUILT_UTILITY")
}

func TestEnvBetweenGlobalAndLocal(t *testing.T) {
	clearEnv(t)
	globalDir := t.TempDir()
	localDir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(globalDir, "config.yaml"),
		[]byte("default_utility: pge\nuser_lan_id: global\n"),
		0o600,
	))
	t.Setenv("ASBUILT_USER", "env-user")
	t.Setenv("ASBUILT_UTILITY", "env-utility")
	require.NoError(t, os.WriteFile(
		filepath.Join(localDir, "config.yaml"),
		[]byte("default_utility: local\n"),
		0o600,
	))

	cfg, err := LoadWithDirs(globalDir, localDir)
	require.NoError(t, err)

	assert.Equal(t, "env-user", cfg.UserLanID)    // env over global
	assert.Equal(t, "local", cfg.DefaultUtility) // local over env
}

func TestApplyCLIFlags(t *testing.T) {
	cfg, err := loadEmbedded()
	require.NoError(t, err)
	cfg.DefaultUtility = "pge"

	cfg.ApplyCLIFlags("", "", "")
	assert.Equal(t, "pge", cfg.DefaultUtility)

	cfg.ApplyCLIFlags("sce", "/u", "jdoe")
	assert.Equal(t, "sce", cfg.DefaultUtility)
	assert.Equal(t, "/u", cfg.UtilitiesDir)
	assert.Equal(t, "jdoe", cfg.UserLanID)
	assert.Contains(t, cfg.Sources(), "cli:utility")
}

func TestResolvedPathsDefault(t *testing.T) {
	t.Setenv("ASBUILT_STATE_DIR", "/state")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")

	cfg := &Config{}
	assert.Equal(t, filepath.Join("/state", "sessions"), cfg.SessionsPath())
	assert.Equal(t, filepath.Join("/state", "outbox"), cfg.OutboxPath())
	assert.Equal(t, filepath.Join("/state", "logs"), cfg.LogsPath())
	assert.Equal(t, filepath.Join("/cfg", "asbuilt", "utilities"), cfg.UtilitiesPath())
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	dir := DefaultConfigDir()
	assert.Contains(t, dir, "asbuilt")
	assert.Contains(t, dir, ".config")
}

func TestSources(t *testing.T) {
	clearEnv(t)
	globalDir := t.TempDir()
	localDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "config.yaml"), []byte("default_utility: pge\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "config.yaml"), []byte("user_lan_id: x\n"), 0o600))

	cfg, err := LoadWithDirs(globalDir, localDir)
	require.NoError(t, err)

	sources := cfg.Sources()
	assert.Contains(t, sources, "embedded")
	assert.Contains(t, sources, filepath.Join(globalDir, "config.yaml"))
	assert.Contains(t, sources, filepath.Join(localDir, "config.yaml"))
}

func TestParseConfigWithTracking(t *testing.T) {
	cfg, err := parseConfigWithTracking([]byte("wizard:\n  show_warnings: false\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Wizard.ShowWarningsSet)
	assert.False(t, cfg.Wizard.ShowWarnings)
	assert.False(t, cfg.Wizard.AutoPrefillSet)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := parseConfigWithTracking([]byte("wizard: [unterminated"))
	require.Error(t, err)
}
