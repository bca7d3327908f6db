// Package paths resolves configuration, data, and backup directory
// locations, with flag, config, and environment overrides.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".snags"
	DefaultDataDirName   = ".snags-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SNAGS_CONFIG_DIR"
	EnvDataDir   = "SNAGS_DATA_DIR"
	EnvBackupDir = "SNAGS_BACKUP_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/snags (fallback ~/.config/snags)
// macOS:   ~/Library/Application Support/snags
// Windows: %APPDATA%/snags
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "snags"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "snags"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "snags"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SNAGS_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config file value > SNAGS_DATA_DIR env > $(CWD)/.snags-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveBackupDir returns the backup directory following the precedence
// chain: flag > config file value > SNAGS_BACKUP_DIR env > empty. An empty
// result means the engine's default, a backups directory inside the data
// directory.
func ResolveBackupDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvBackupDir); env != "" {
		return filepath.Abs(env)
	}
	return "", nil
}
