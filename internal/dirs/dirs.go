// Package dirs provides XDG Base Directory Specification compliant paths
// for all asbuilt directories.
package dirs

import (
	"os"
	"path/filepath"
)

const appName = "asbuilt"

// ConfigDir returns the asbuilt configuration directory.
// Resolution order: XDG_CONFIG_HOME/asbuilt > ~/.config/asbuilt.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the asbuilt state directory.
// Resolution order: ASBUILT_STATE_DIR > XDG_STATE_HOME/asbuilt > ~/.local/state/asbuilt.
func StateDir() string {
	if dir := os.Getenv("ASBUILT_STATE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "state", appName)
	}
	return filepath.Join(home, ".local", "state", appName)
}

// UtilitiesDir returns the default directory of utility configuration
// files (ConfigDir/utilities).
func UtilitiesDir() string {
	return filepath.Join(ConfigDir(), "utilities")
}

// SessionsDir returns the directory holding saved wizard sessions.
func SessionsDir() string {
	return filepath.Join(StateDir(), "sessions")
}

// OutboxDir returns the directory submissions are written to.
func OutboxDir() string {
	return filepath.Join(StateDir(), "outbox")
}

// LogsDir returns the asbuilt logs directory (StateDir/logs).
func LogsDir() string {
	return filepath.Join(StateDir(), "logs")
}
