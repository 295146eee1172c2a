// Package config loads immowert settings from the config file, IMMOWERT_*
// environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDir is where the config file lives unless --config says otherwise.
func DefaultDir() string {
	return ExpandPath("~/.config/immowert")
}

// DefaultDataDir holds the history database and file store.
func DefaultDataDir() string {
	return ExpandPath("~/.local/share/immowert")
}
