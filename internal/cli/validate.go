package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kemukujara/lolbackup/internal/app"
	"github.com/kemukujara/lolbackup/internal/archive"
	"github.com/kemukujara/lolbackup/internal/config"
	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/http"
	"github.com/kemukujara/lolbackup/internal/metrics"
	"github.com/kemukujara/lolbackup/internal/notify"
	"github.com/kemukujara/lolbackup/internal/procguard"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and test connectivity",
		Long: `Validate the configuration file and check the environment.

This checks:
- Config file syntax
- Client source directories
- Backup folder
- Whether the client is running
- Pushgateway connectivity (if enabled)
- Apprise server connectivity (if enabled)`,
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Configuration:")
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  ✗ Config file: %v\n", err)
		return errReported
	}
	fmt.Fprintf(out, "  ✓ Config file syntax valid\n")

	configPath, _ := config.DefaultConfigPath()
	if cfgFile != "" {
		configPath = cfgFile
	}
	fmt.Fprintf(out, "  Config file: %s\n", configPath)
	fmt.Fprintf(out, "  Client root: %s\n", cfg.Client.Root)
	fmt.Fprintf(out, "  Backup folder: %s\n", cfg.BackupDir)
	fmt.Fprintf(out, "  Restore root: %s\n", cfg.Restore.Root)
	fmt.Fprintf(out, "  Recovery policy: %s\n", cfg.Restore.RecoveryPolicy)
	fmt.Fprintf(out, "  Staged extract: %t\n", cfg.Restore.StagedExtract)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Metrics: enabled\n")
		fmt.Fprintf(out, "  Pushgateway URL: %s\n", cfg.Metrics.PushgatewayURL)
	} else {
		fmt.Fprintf(out, "  Metrics: disabled\n")
	}
	if cfg.Apprise.Enabled {
		fmt.Fprintf(out, "  Notifications: enabled\n")
		fmt.Fprintf(out, "  Apprise URL: %s\n", cfg.Apprise.URL)
		fmt.Fprintf(out, "  Notification level: %s\n", cfg.Apprise.Notify)
	} else {
		fmt.Fprintf(out, "  Notifications: disabled\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Checks:")
	logger, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	checkDir(out, "Config directory", cfg.Client.ConfigDir)
	checkDir(out, "DATA/CFG directory", cfg.Client.DataCFGDir)

	runner := app.NewRunner(cfg, app.WithLogger(logger))
	if err := runner.EnsureBackupDir(); err != nil {
		fmt.Fprintf(out, "  ✗ Backup folder: %v\n", err)
	} else if archives, err := runner.ListArchives(); err != nil {
		fmt.Fprintf(out, "  ✗ Backup folder: %v\n", err)
	} else {
		fmt.Fprintf(out, "  ✓ Backup folder ready (%d archives)\n", len(archives))
		if len(archives) > 0 {
			checkArchive(out, archives[0])
		}
	}

	guard := procguard.New(cfg.Client.ProcessName, procguard.WithLogger(logger))
	if running, err := guard.Running(ctx); err != nil {
		fmt.Fprintf(out, "  ✗ Process list: %v\n", err)
	} else if len(running) > 0 {
		fmt.Fprintf(out, "  ! %s is running (%d processes); restore will offer to close it\n",
			cfg.Client.ProcessName, len(running))
	} else {
		fmt.Fprintf(out, "  ✓ %s is not running\n", cfg.Client.ProcessName)
	}

	httpClient := http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  1, // No retries for validation
			InitialDelay: time.Second,
			MaxDelay:     time.Second,
		}),
		http.WithLogger(logger),
	)

	if cfg.Metrics.Enabled {
		pushgatewayClient := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)

		if err := pushgatewayClient.Validate(ctx); err != nil {
			fmt.Fprintf(out, "  ✗ Pushgateway: %v\n", err)
		} else {
			fmt.Fprintf(out, "  ✓ Pushgateway reachable\n")
		}
	}

	if cfg.Apprise.Enabled {
		appriseClient := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
		)

		if err := appriseClient.Validate(ctx); err != nil {
			fmt.Fprintf(out, "  ✗ Apprise server: %v\n", err)
		} else {
			fmt.Fprintf(out, "  ✓ Apprise server reachable\n")
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Validation complete.")
	return nil
}

// checkArchive reads the entry list of a and looks for both settings folders.
func checkArchive(out io.Writer, a domain.Archive) {
	names, err := archive.Entries(afero.NewOsFs(), a.Path)
	if err != nil {
		fmt.Fprintf(out, "  ✗ Latest backup %s: %s\n", a.Name, domain.Describe(err))
		return
	}

	var missing []string
	for _, dir := range []string{domain.StagingConfigDir, domain.StagingCFGDir} {
		found := false
		for _, name := range names {
			if strings.HasPrefix(name, dir+"/") {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, dir)
		}
	}

	if len(missing) > 0 {
		fmt.Fprintf(out, "  ! Latest backup %s has no %s folder\n", a.Name, strings.Join(missing, " or "))
		return
	}
	fmt.Fprintf(out, "  ✓ Latest backup %s readable (%d entries)\n", a.Name, len(names))
}

func checkDir(out io.Writer, label, path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  ✗ %s: %v\n", label, err)
	case !info.IsDir():
		fmt.Fprintf(out, "  ✗ %s: %s is not a directory\n", label, path)
	default:
		fmt.Fprintf(out, "  ✓ %s: %s\n", label, path)
	}
}
