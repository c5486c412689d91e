package config

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// DefaultClientRoot is the default League of Legends installation directory.
const DefaultClientRoot = `C:\Riot Games\League of Legends`

// knownFolder resolves a Windows known folder, falling back to an environment
// variable and finally to a path under the user profile.
func knownFolder(id *windows.KNOWNFOLDERID, env string, rel ...string) (string, error) {
	if dir, err := windows.KnownFolderPath(id, windows.KF_FLAG_DEFAULT); err == nil && dir != "" {
		return dir, nil
	}
	if dir := os.Getenv(env); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, rel...)...), nil
}

// %APPDATA%
func userDataDir() (string, error) {
	return knownFolder(windows.FOLDERID_RoamingAppData, "APPDATA", "AppData", "Roaming")
}

func userConfigDir() (string, error) {
	return userDataDir()
}

// %LOCALAPPDATA%\lolbackup\logs
func userLogDir() (string, error) {
	dir, err := knownFolder(windows.FOLDERID_LocalAppData, "LOCALAPPDATA", "AppData", "Local")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "logs"), nil
}
