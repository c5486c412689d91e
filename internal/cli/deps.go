package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kemukujara/lolbackup/internal/app"
	"github.com/kemukujara/lolbackup/internal/config"
	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/http"
	"github.com/kemukujara/lolbackup/internal/metrics"
	"github.com/kemukujara/lolbackup/internal/notify"
)

// newHTTPClient creates the HTTP client shared by the notifier and the metrics pusher.
func newHTTPClient(cfg *config.Config, logger *slog.Logger) *http.Client {
	return http.NewClient(
		http.WithRetryConfig(http.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
		}),
		http.WithLogger(logger),
	)
}

// newNotifier prints every notification to the terminal and forwards the
// configured levels to Apprise when it is enabled.
func newNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger, out, errOut io.Writer) domain.Notifier {
	notifiers := []domain.Notifier{notify.NewConsoleNotifier(out, errOut)}

	if cfg.Apprise.Enabled {
		hostname, _ := os.Hostname()
		apprise := notify.NewAppriseClient(
			cfg.Apprise.URL,
			cfg.Apprise.Key,
			notify.WithHTTPClient(httpClient),
			notify.WithLogger(logger),
			notify.WithHostname(hostname),
			notify.WithTag(cfg.Apprise.Tag),
		)
		notifiers = append(notifiers, notify.NewFilteredNotifier(apprise, cfg.Apprise.Notify))
	}

	return notify.NewMultiNotifier(notifiers...).WithLogger(logger)
}

// newRunner wires a Runner from the loaded config.
func newRunner(cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) *app.Runner {
	httpClient := newHTTPClient(cfg, logger)

	runnerOpts := []app.RunnerOption{
		app.WithLogger(logger),
		app.WithNotifier(newNotifier(cfg, httpClient, logger, out, errOut)),
	}

	if cfg.Metrics.Enabled {
		metricsPusher := metrics.NewPushgatewayClient(
			cfg.Metrics.PushgatewayURL,
			metrics.WithHTTPClient(httpClient),
			metrics.WithLogger(logger),
		)
		runnerOpts = append(runnerOpts, app.WithMetricsPusher(metricsPusher))
	}

	return app.NewRunner(cfg, runnerOpts...)
}

// setup loads the config and logging for a command.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return cfg, logger, nil
}
