package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyLevel_IsValid(t *testing.T) {
	tests := []struct {
		level NotifyLevel
		want  bool
	}{
		{NotifyError, true},
		{NotifyWarning, true},
		{NotifyAlways, true},
		{NotifyLevel("invalid"), false},
		{NotifyLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.IsValid())
		})
	}
}

func TestRecoveryPolicy_IsValid(t *testing.T) {
	assert.True(t, RecoveryBestEffort.IsValid())
	assert.True(t, RecoveryRequired.IsValid())
	assert.False(t, RecoveryPolicy("sometimes").IsValid())
	assert.False(t, RecoveryPolicy("").IsValid())
}

func TestConfig_Validate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Client: ClientConfig{
				Root:        `C:\Riot Games\League of Legends`,
				ConfigDir:   `C:\Riot Games\League of Legends\Config`,
				DataCFGDir:  `C:\Riot Games\League of Legends\DATA\CFG`,
				ProcessName: "LeagueClient",
			},
			BackupDir: `C:\Users\me\AppData\Roaming\Kemukujara Technologies\Backups`,
			Restore: RestoreConfig{
				Root:           `C:\Riot Games`,
				RecoveryPolicy: RecoveryBestEffort,
				StagedExtract:  true,
				KillTimeout:    30 * time.Second,
			},
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 2 * time.Second,
				MaxDelay:     30 * time.Second,
			},
			Metrics: MetricsConfig{
				Enabled:        true,
				PushgatewayURL: "http://pushgateway:9091",
			},
			Apprise: AppriseConfig{
				Enabled: true,
				URL:     "http://localhost:8000",
				Key:     "lolbackup",
				Notify:  NotifyError,
			},
			Log: LogConfig{
				Level:     "info",
				MaxSizeMB: 10,
			},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing client root", func(c *Config) { c.Client.Root = "" }, "client.root is required"},
		{"missing config dir", func(c *Config) { c.Client.ConfigDir = "" }, "client.config_dir and client.data_cfg_dir are required"},
		{"missing process name", func(c *Config) { c.Client.ProcessName = "" }, "client.process_name is required"},
		{"missing backup dir", func(c *Config) { c.BackupDir = "" }, "backup_dir is required"},
		{"missing restore root", func(c *Config) { c.Restore.Root = "" }, "restore.root is required"},
		{"invalid recovery policy", func(c *Config) { c.Restore.RecoveryPolicy = "maybe" }, "restore.recovery_policy must be one of"},
		{"zero kill timeout", func(c *Config) { c.Restore.KillTimeout = 0 }, "restore.kill_timeout must be positive"},
		{"empty pushgateway URL when metrics enabled", func(c *Config) { c.Metrics.PushgatewayURL = "" }, "metrics.pushgateway_url is required when metrics is enabled"},
		{"retry max_attempts less than 1", func(c *Config) { c.Retry.MaxAttempts = 0 }, "retry.max_attempts must be at least 1"},
		{"retry negative initial_delay", func(c *Config) { c.Retry.InitialDelay = -time.Second }, "retry.initial_delay cannot be negative"},
		{"retry max_delay less than initial_delay", func(c *Config) { c.Retry.MaxDelay = time.Second }, "retry.max_delay must be >= retry.initial_delay"},
		{"apprise enabled without URL", func(c *Config) { c.Apprise.URL = "" }, "apprise.url is required"},
		{"apprise enabled without key", func(c *Config) { c.Apprise.Key = "" }, "apprise.key is required"},
		{"invalid apprise notify level", func(c *Config) { c.Apprise.Notify = "invalid" }, "apprise.notify must be one of"},
		{"invalid log level", func(c *Config) { c.Log.Level = "invalid" }, "log.level must be one of"},
		{"log max_size_mb less than 1", func(c *Config) { c.Log.MaxSizeMB = 0 }, "log.max_size_mb must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("metrics disabled skips validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Metrics.Enabled = false
		cfg.Metrics.PushgatewayURL = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("apprise disabled skips validation", func(t *testing.T) {
		cfg := validConfig()
		cfg.Apprise.Enabled = false
		cfg.Apprise.URL = ""
		cfg.Apprise.Key = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoader_Load_Defaults(t *testing.T) {
	isolateDirs(t)

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultClientRoot, cfg.Client.Root)
	assert.Equal(t, filepath.Join(DefaultClientRoot, "Config"), cfg.Client.ConfigDir)
	assert.Equal(t, filepath.Join(DefaultClientRoot, "DATA", "CFG"), cfg.Client.DataCFGDir)
	assert.Equal(t, DefaultClientProcessName, cfg.Client.ProcessName)
	assert.Equal(t, filepath.Dir(DefaultClientRoot), cfg.Restore.Root)
	assert.Equal(t, DefaultRecoveryPolicy, cfg.Restore.RecoveryPolicy)
	assert.Equal(t, DefaultStagedExtract, cfg.Restore.StagedExtract)
	assert.Equal(t, DefaultKillTimeout, cfg.Restore.KillTimeout)
	assert.Equal(t, os.TempDir(), cfg.TempDir)
	assert.Contains(t, cfg.BackupDir, filepath.Join(VendorName, BackupFolderName))
	assert.Equal(t, DefaultMetricsEnabled, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultRetryMaxAttempts, cfg.Retry.MaxAttempts)
	assert.Equal(t, DefaultRetryInitialDelay, cfg.Retry.InitialDelay)
	assert.Equal(t, DefaultRetryMaxDelay, cfg.Retry.MaxDelay)
	assert.Equal(t, DefaultAppriseEnabled, cfg.Apprise.Enabled)
	assert.Equal(t, DefaultAppriseNotify, cfg.Apprise.Notify)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Log.MaxSizeMB)
	assert.Contains(t, cfg.Log.Output, LogFileName)
}

func TestLoader_Load_FromFile(t *testing.T) {
	isolateDirs(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	root := filepath.Join(tmpDir, "Riot Games", "League of Legends")
	backups := filepath.Join(tmpDir, "backups")

	content := `
backup_dir = '` + backups + `'

[client]
root = '` + root + `'
process_name = "LeagueClientUx"

[restore]
recovery_policy = "required"
staged_extract = false
kill_timeout = "5s"

[retry]
max_attempts = 5
initial_delay = "10s"
max_delay = "60s"

[metrics]
enabled = true
pushgateway_url = "http://custom-pushgateway:9091"

[apprise]
enabled = false
url = "http://apprise:8000"
key = "test"
notify = "always"

[log]
level = "debug"
max_size_mb = 20
`
	err := os.WriteFile(configPath, []byte(content), 0600)
	require.NoError(t, err)

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, configPath, loader.ConfigFileUsed())
	assert.Equal(t, root, cfg.Client.Root)
	assert.Equal(t, filepath.Join(root, "Config"), cfg.Client.ConfigDir)
	assert.Equal(t, filepath.Join(root, "DATA", "CFG"), cfg.Client.DataCFGDir)
	assert.Equal(t, "LeagueClientUx", cfg.Client.ProcessName)
	assert.Equal(t, filepath.Join(tmpDir, "Riot Games"), cfg.Restore.Root)
	assert.Equal(t, backups, cfg.BackupDir)
	assert.Equal(t, RecoveryRequired, cfg.Restore.RecoveryPolicy)
	assert.False(t, cfg.Restore.StagedExtract)
	assert.Equal(t, 5*time.Second, cfg.Restore.KillTimeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "http://custom-pushgateway:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 60*time.Second, cfg.Retry.MaxDelay)
	assert.False(t, cfg.Apprise.Enabled)
	assert.Equal(t, "http://apprise:8000", cfg.Apprise.URL)
	assert.Equal(t, "test", cfg.Apprise.Key)
	assert.Equal(t, NotifyAlways, cfg.Apprise.Notify)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Log.MaxSizeMB)
}

func TestLoader_Load_ExplicitSourceDirs(t *testing.T) {
	isolateDirs(t)

	loader := NewLoader()
	loader.Set("client.root", "/games/lol")
	loader.Set("client.config_dir", "/elsewhere/Config")
	loader.Set("restore.root", "/restore-here")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/elsewhere/Config", cfg.Client.ConfigDir)
	assert.Equal(t, filepath.Join("/games/lol", "DATA", "CFG"), cfg.Client.DataCFGDir)
	assert.Equal(t, "/restore-here", cfg.Restore.Root)
}

func TestLoader_Load_EnvOverrides(t *testing.T) {
	isolateDirs(t)
	t.Setenv("LOLBACKUP_CLIENT_PROCESS_NAME", "LeagueClientUx")
	t.Setenv("LOLBACKUP_RESTORE_RECOVERY_POLICY", "required")
	t.Setenv("LOLBACKUP_LOG_LEVEL", "debug")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "LeagueClientUx", cfg.Client.ProcessName)
	assert.Equal(t, RecoveryRequired, cfg.Restore.RecoveryPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoader_Set(t *testing.T) {
	isolateDirs(t)
	t.Setenv("LOLBACKUP_LOG_LEVEL", "debug")

	loader := NewLoader()
	loader.Set("log.level", "error")
	loader.Set("restore.kill_timeout", "1m")

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Restore.KillTimeout)
}

func TestLoader_Load_InvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[restore]\nrecovery_policy = \"maybe\"\n"), 0600))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.ErrorContains(t, err, "invalid config")
}

func TestWriteExampleConfig(t *testing.T) {
	isolateDirs(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.toml")

	err := WriteExampleConfig(configPath)
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	require.NoError(t, err)

	loader := NewLoader().WithConfigPath(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultRecoveryPolicy, cfg.Restore.RecoveryPolicy)
	assert.Equal(t, DefaultKillTimeout, cfg.Restore.KillTimeout)
	assert.Equal(t, DefaultClientProcessName, cfg.Client.ProcessName)
}

func TestDefaultConfigDir(t *testing.T) {
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.NotEmpty(t, dir)
	assert.Contains(t, dir, AppName)
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ConfigFileName)
}

func TestDefaultBackupDir(t *testing.T) {
	dir, err := DefaultBackupDir()
	require.NoError(t, err)
	assert.Equal(t, BackupFolderName, filepath.Base(dir))
	assert.Equal(t, VendorName, filepath.Base(filepath.Dir(dir)))
}

// isolateDirs points the per-user directories at a temp dir so a real config
// file on the test machine is never picked up.
func isolateDirs(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv("APPDATA", dir)
	t.Setenv("LOCALAPPDATA", dir)
}
