// Package paths resolves coverflow's per-user directories.
//
// When running under sudo the directories of the invoking user (SUDO_USER)
// are used rather than root's.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// UserConfigDir returns ~/.config for the actual user, honouring
// XDG_CONFIG_HOME when set.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && os.Getenv("SUDO_USER") == "" {
		return xdg, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}

// Dir returns ~/.config/coverflow.
func Dir() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "coverflow"), nil
}

func inDir(name ...string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, name...)...), nil
}

// ConfigPath returns ~/.config/coverflow/config.toml.
func ConfigPath() (string, error) { return inDir("config.toml") }

// CoversDir returns the default cover cache root.
func CoversDir() (string, error) { return inDir("covers") }

// DatabasePath returns the cover attempt database path.
func DatabasePath() (string, error) { return inDir("coverflow.db") }

// LogPath returns the default log file.
func LogPath() (string, error) { return inDir("logs", "coverflow.log") }

// EnvPath returns the optional .env file next to the config.
func EnvPath() (string, error) { return inDir(".env") }
