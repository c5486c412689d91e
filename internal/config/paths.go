package config

import "path/filepath"

const (
	// AppName is the application name used for config and log directories.
	AppName = "lolbackup"
	// VendorName is the folder under the user data directory that holds backups.
	VendorName = "Kemukujara Technologies"
	// BackupFolderName is the backup folder under VendorName.
	BackupFolderName = "Backups"
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.toml"
	// LogFileName is the default log file name.
	LogFileName = "lolbackup.log"
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LOLBACKUP"
)

// DefaultConfigDir returns the default configuration directory for the current OS.
func DefaultConfigDir() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// DefaultBackupDir returns the folder archives are written to,
// %APPDATA%\Kemukujara Technologies\Backups on Windows.
func DefaultBackupDir() (string, error) {
	dir, err := userDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, VendorName, BackupFolderName), nil
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := userLogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}
