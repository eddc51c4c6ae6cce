package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the application directory used for the user-level
// preferences file. The per-repository state under .dat/ is unrelated
// and always resolved relative to the working root, never to this.
const appName = "dat"

const platformDarwin = "darwin"

// RepoDotDir returns the .dat directory for the given working root.
func RepoDotDir(root string) string {
	return filepath.Join(root, ".dat")
}

// ConfigPath returns .dat/config under root.
func ConfigPath(root string) string {
	return filepath.Join(RepoDotDir(root), "config")
}

// LocalPath returns .dat/local under root.
func LocalPath(root string) string {
	return filepath.Join(RepoDotDir(root), "local")
}

// StashDir returns .dat/stash under root.
func StashDir(root string) string {
	return filepath.Join(RepoDotDir(root), "stash")
}

// HistoryDBPath returns .dat/history.db under root.
func HistoryDBPath(root string) string {
	return filepath.Join(RepoDotDir(root), "history.db")
}

// DefaultConfigDir returns the platform-specific directory for the
// user-level preferences file, following the usual XDG/macOS convention
// for per-user config directories.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".config", appName)
	}
}

// DefaultPreferencesPath returns the full path to the user-level
// preferences.toml file.
func DefaultPreferencesPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, "preferences.toml")
}
