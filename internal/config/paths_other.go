//go:build !windows

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultClientRoot is the default League of Legends installation directory.
var DefaultClientRoot = defaultClientRoot()

func defaultClientRoot() string {
	if runtime.GOOS == "darwin" {
		return "/Applications/League of Legends.app/Contents/LoL"
	}
	// Wine prefix layout used by the common Linux installers.
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("Riot Games", "League of Legends")
	}
	return filepath.Join(home, "Games", "league-of-legends", "drive_c", "Riot Games", "League of Legends")
}

func xdgDir(env string, rel ...string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}

func userDataDir() (string, error) {
	if runtime.GOOS == "darwin" {
		return xdgDir("", "Library", "Application Support")
	}
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

func userConfigDir() (string, error) {
	if runtime.GOOS == "darwin" {
		return xdgDir("", "Library", "Application Support")
	}
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func userLogDir() (string, error) {
	if runtime.GOOS == "darwin" {
		return xdgDir("", "Library", "Logs", AppName)
	}
	dir, err := xdgDir("XDG_STATE_HOME", ".local", "state")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}
