// Package metrics provides implementations for pushing metrics to remote endpoints.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/kemukujara/lolbackup/internal/domain"
	"github.com/kemukujara/lolbackup/internal/http"
	"github.com/kemukujara/lolbackup/pkg/version"
)

const (
	metricsJobName   = "lolbackup"
	metricsNamespace = "lolbackup"
)

// PushgatewayClient pushes metrics to a Prometheus Pushgateway.
type PushgatewayClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushgatewayOption configures a PushgatewayClient.
type PushgatewayOption func(*PushgatewayClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PushgatewayOption {
	return func(p *PushgatewayClient) {
		p.logger = logger
	}
}

// NewPushgatewayClient creates a new PushgatewayClient.
func NewPushgatewayClient(url string, opts ...PushgatewayOption) *PushgatewayClient {
	p := &PushgatewayClient{
		url:        strings.TrimSuffix(url, "/"),
		httpClient: http.NewClient(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Push replaces the metrics of this job and instance on the Pushgateway.
func (p *PushgatewayClient) Push(ctx context.Context, metrics *domain.Metrics) error {
	p.logger.Debug("pushing metrics to pushgateway",
		"url", p.url,
		"results", len(metrics.Results),
	)

	pusher := push.New(p.url, metricsJobName).
		Gatherer(buildRegistry(metrics)).
		Grouping("instance", metrics.Hostname).
		Client(p.httpClient.Doer())

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	p.logger.Debug("metrics pushed successfully")
	return nil
}

// Validate checks if the Pushgateway is reachable.
func (p *PushgatewayClient) Validate(ctx context.Context) error {
	readyURL := fmt.Sprintf("%s/-/ready", p.url)

	if err := p.httpClient.CheckConnectivity(ctx, readyURL); err != nil {
		// Try the root URL as fallback
		if err2 := p.httpClient.CheckConnectivity(ctx, p.url); err2 != nil {
			return fmt.Errorf("pushgateway not reachable at %s: %w", p.url, err)
		}
	}

	return nil
}

// buildRegistry collects the snapshot into a fresh registry.
func buildRegistry(m *domain.Metrics) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "info",
		Help:      "Build information",
	}, []string{"version", "go_version"})
	info.WithLabelValues(version.Get().Version, runtime.Version()).Set(1)

	archives := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "archives",
		Help:      "Number of backup archives in the backup folder",
	})
	archives.Set(float64(m.BackupCount))

	reg.MustRegister(info, archives)

	if len(m.Results) == 0 {
		return reg
	}

	opLabels := []string{"operation"}
	timestamp := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of last run",
	}, opLabels)
	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_success",
		Help:      "Whether the last run succeeded",
	}, opLabels)
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_duration_seconds",
		Help:      "Duration of last run",
	}, opLabels)
	size := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_archive_bytes",
		Help:      "Size of the archive written by the last run",
	}, opLabels)
	failure := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_failure",
		Help:      "Set to 1 for the error kind of a failed last run",
	}, []string{"operation", "kind"})

	for _, r := range m.Results {
		op := r.Operation.String()
		timestamp.WithLabelValues(op).Set(float64(r.EndTime.Unix()))
		duration.WithLabelValues(op).Set(r.Duration.Seconds())
		if r.Success {
			success.WithLabelValues(op).Set(1)
		} else {
			success.WithLabelValues(op).Set(0)
			failure.WithLabelValues(op, r.ErrorKind.String()).Set(1)
		}
		if r.ArchiveBytes > 0 {
			size.WithLabelValues(op).Set(float64(r.ArchiveBytes))
		}
	}

	reg.MustRegister(timestamp, success, duration, size, failure)
	return reg
}

// Ensure PushgatewayClient implements domain.MetricsPusher.
var _ domain.MetricsPusher = (*PushgatewayClient)(nil)
