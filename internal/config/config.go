package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Client    ClientConfig  `mapstructure:"client"`
	BackupDir string        `mapstructure:"backup_dir"`
	TempDir   string        `mapstructure:"temp_dir"`
	Restore   RestoreConfig `mapstructure:"restore"`
	Retry     RetryConfig   `mapstructure:"retry"`
	Metrics   MetricsConfig `mapstructure:"metrics"`
	Apprise   AppriseConfig `mapstructure:"apprise"`
	Log       LogConfig     `mapstructure:"log"`
}

// ClientConfig locates the League of Legends installation.
type ClientConfig struct {
	Root        string `mapstructure:"root"`
	ConfigDir   string `mapstructure:"config_dir"`
	DataCFGDir  string `mapstructure:"data_cfg_dir"`
	ProcessName string `mapstructure:"process_name"`
}

// RestoreConfig holds restore behaviour.
type RestoreConfig struct {
	// Root is the directory archives are extracted into.
	Root           string         `mapstructure:"root"`
	RecoveryPolicy RecoveryPolicy `mapstructure:"recovery_policy"`
	StagedExtract  bool           `mapstructure:"staged_extract"`
	KillTimeout    time.Duration  `mapstructure:"kill_timeout"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// RetryConfig holds HTTP retry configuration.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// AppriseConfig holds Apprise notification configuration.
type AppriseConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	URL     string      `mapstructure:"url"`
	Key     string      `mapstructure:"key"`
	Notify  NotifyLevel `mapstructure:"notify"`
	// Tag limits delivery to the Apprise URLs with this tag.
	Tag string `mapstructure:"tag"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configPath string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// WithConfigPath sets a specific config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load reads configuration from all sources and returns the merged config.
// Precedence (highest to lowest): CLI flags > environment > config file > defaults.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvBindings()

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	l.v.SetDefault("client.root", DefaultClientRoot)
	l.v.SetDefault("client.config_dir", "")
	l.v.SetDefault("client.data_cfg_dir", "")
	l.v.SetDefault("client.process_name", DefaultClientProcessName)

	l.v.SetDefault("backup_dir", "")
	l.v.SetDefault("temp_dir", "")

	l.v.SetDefault("restore.root", "")
	l.v.SetDefault("restore.recovery_policy", string(DefaultRecoveryPolicy))
	l.v.SetDefault("restore.staged_extract", DefaultStagedExtract)
	l.v.SetDefault("restore.kill_timeout", DefaultKillTimeout)

	l.v.SetDefault("retry.max_attempts", DefaultRetryMaxAttempts)
	l.v.SetDefault("retry.initial_delay", DefaultRetryInitialDelay)
	l.v.SetDefault("retry.max_delay", DefaultRetryMaxDelay)

	l.v.SetDefault("metrics.enabled", DefaultMetricsEnabled)
	l.v.SetDefault("metrics.pushgateway_url", DefaultMetricsPushgatewayURL)

	l.v.SetDefault("apprise.enabled", DefaultAppriseEnabled)
	l.v.SetDefault("apprise.url", DefaultAppriseURL)
	l.v.SetDefault("apprise.key", DefaultAppriseKey)
	l.v.SetDefault("apprise.notify", string(DefaultAppriseNotify))
	l.v.SetDefault("apprise.tag", "")

	l.v.SetDefault("log.level", DefaultLogLevel)
	l.v.SetDefault("log.output", "")
	l.v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
}

// setupEnvBindings configures environment variable bindings.
func (l *Loader) setupEnvBindings() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// loadConfigFile loads configuration from a file.
func (l *Loader) loadConfigFile() error {
	if l.configPath != "" {
		l.v.SetConfigFile(l.configPath)
	} else {
		configDir, err := DefaultConfigDir()
		if err != nil {
			// Can't determine config dir, proceed without file config
			return nil
		}

		l.v.SetConfigName("config")
		l.v.SetConfigType("toml")
		l.v.AddConfigPath(configDir)
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		// Config file not found is not an error - use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// Set sets a configuration value (for CLI flag overrides).
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// resolvePaths fills in the paths whose defaults depend on other settings or on the OS.
func (c *Config) resolvePaths() error {
	if c.Client.ConfigDir == "" {
		c.Client.ConfigDir = filepath.Join(c.Client.Root, "Config")
	}
	if c.Client.DataCFGDir == "" {
		c.Client.DataCFGDir = filepath.Join(c.Client.Root, "DATA", "CFG")
	}

	// Archives hold Config/ and CFG/ at the top level and are unpacked one level
	// above the installation root.
	if c.Restore.Root == "" {
		c.Restore.Root = filepath.Dir(c.Client.Root)
	}

	if c.BackupDir == "" {
		dir, err := DefaultBackupDir()
		if err != nil {
			return fmt.Errorf("failed to determine backup directory: %w", err)
		}
		c.BackupDir = dir
	}

	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}

	// If we can't determine the default log path, leave it empty (will log to stderr)
	if c.Log.Output == "" {
		if logPath, err := DefaultLogPath(); err == nil {
			c.Log.Output = logPath
		}
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Client.Root == "" {
		return fmt.Errorf("client.root is required")
	}

	if c.Client.ConfigDir == "" || c.Client.DataCFGDir == "" {
		return fmt.Errorf("client.config_dir and client.data_cfg_dir are required")
	}

	if c.Client.ProcessName == "" {
		return fmt.Errorf("client.process_name is required")
	}

	if c.BackupDir == "" {
		return fmt.Errorf("backup_dir is required")
	}

	if c.Restore.Root == "" {
		return fmt.Errorf("restore.root is required")
	}

	if !c.Restore.RecoveryPolicy.IsValid() {
		return fmt.Errorf("restore.recovery_policy must be one of: best_effort, required")
	}

	if c.Restore.KillTimeout <= 0 {
		return fmt.Errorf("restore.kill_timeout must be positive, got %s", c.Restore.KillTimeout)
	}

	if c.Metrics.Enabled {
		if c.Metrics.PushgatewayURL == "" {
			return fmt.Errorf("metrics.pushgateway_url is required when metrics is enabled")
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	if c.Retry.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay cannot be negative")
	}

	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.initial_delay")
	}

	if c.Apprise.Enabled {
		if c.Apprise.URL == "" {
			return fmt.Errorf("apprise.url is required when apprise is enabled")
		}
		if c.Apprise.Key == "" {
			return fmt.Errorf("apprise.key is required when apprise is enabled")
		}
		if !c.Apprise.Notify.IsValid() {
			return fmt.Errorf("apprise.notify must be one of: error, warning, always")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1")
	}

	return nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// WriteExampleConfig writes an example config file to the given path.
func WriteExampleConfig(path string) error {
	content := `# lolbackup configuration

# League of Legends installation
[client]
# root = 'C:\Riot Games\League of Legends'
# Source directories (default to <root>\Config and <root>\DATA\CFG)
# config_dir = ""
# data_cfg_dir = ""
process_name = "LeagueClient"

# Where archives are written (defaults to %APPDATA%\Kemukujara Technologies\Backups)
# backup_dir = ""

# Root for temporary staging directories (defaults to the OS temp directory)
# temp_dir = ""

[restore]
# Directory archives are extracted into (defaults to the parent of client.root)
# root = ""
# What to do when the recovery snapshot fails: "best_effort" or "required"
recovery_policy = "best_effort"
# Unpack into a staging directory first so a corrupt archive changes nothing
staged_extract = true
# How long to wait for the client to exit after it was closed
kill_timeout = "30s"

# HTTP retry configuration
[retry]
max_attempts = 3
initial_delay = "2s"
max_delay = "30s"

# Prometheus metrics (optional, disabled by default)
[metrics]
enabled = false
pushgateway_url = "http://pushgateway:9091"

# Apprise notifications (optional, disabled by default)
[apprise]
enabled = false
url = "http://localhost:8000"
key = "lolbackup"
# Notification level: "error", "warning", "always"
notify = "error"
# Only notify the Apprise URLs with this tag
# tag = ""

# Logging configuration
[log]
# Level: debug, info, warn, error
level = "info"
# Output file path (defaults to lolbackup.log in the log directory)
# output = ""
# Max log file size before rotation (MB)
max_size_mb = 10
`
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0600)
}
