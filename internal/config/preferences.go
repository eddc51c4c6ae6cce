package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Preferences holds user-level defaults, read from preferences.toml.
// Commands that run inside a repository use DefaultProfile when neither
// --profile nor .dat/config names a profile. init and clone do not read
// preferences, and no command applies DefaultRegion or Color.
type Preferences struct {
	DefaultProfile string `toml:"default_profile"`
	DefaultRegion  string `toml:"default_region"`
	Color          string `toml:"color"` // "auto" (default), "always", "never"
}

// DefaultPreferences returns the preferences in effect with no file
// present.
func DefaultPreferences() *Preferences {
	return &Preferences{
		DefaultRegion: DefaultRegion,
		Color:         "auto",
	}
}

// LoadPreferences reads path and decodes it as TOML. A missing file is
// not an error — it yields DefaultPreferences(), the usual
// load-or-default idiom for optional config.
func LoadPreferences(path string) (*Preferences, error) {
	prefs := DefaultPreferences()

	if path == "" {
		return prefs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}

		return nil, err
	}

	if _, err := toml.Decode(string(data), prefs); err != nil {
		return nil, err
	}

	if prefs.Color == "" {
		prefs.Color = "auto"
	}

	if prefs.DefaultRegion == "" {
		prefs.DefaultRegion = DefaultRegion
	}

	return prefs, nil
}
