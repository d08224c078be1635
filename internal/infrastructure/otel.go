package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"go.opentelemetry.io/otel/attribute"
)

// OTelProviders holds the OpenTelemetry metric provider and the
// Prometheus scrape handler backed by it
type OTelProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	PrometheusHTTP http.Handler
}

// InitializeOTel sets up metrics export through the Prometheus
// exporter. Called once by the orchestrator during startup.
func InitializeOTel(serviceName, version string, logger *slog.Logger) (*OTelProviders, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	logger.Info("OpenTelemetry metrics initialized",
		slog.String("service", serviceName),
		slog.String("exporter", "prometheus"))

	return &OTelProviders{
		MeterProvider:  provider,
		Meter:          provider.Meter(serviceName),
		PrometheusHTTP: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Shutdown flushes and stops the metric provider
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider.Shutdown(ctx)
}

// AppMetrics holds the application-level instruments
type AppMetrics struct {
	HTTPRequests    metric.Int64Counter
	HTTPDuration    metric.Float64Histogram
	AdapterRuns     metric.Int64Counter
	AdapterDuration metric.Float64Histogram
	ActiveSessions  metric.Int64UpDownCounter
}

// CreateAppMetrics creates the application instruments on the given meter
func CreateAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	httpRequests, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total HTTP requests processed"))
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	httpDuration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration_seconds: %w", err)
	}

	adapterRuns, err := meter.Int64Counter("analysis_runs_total",
		metric.WithDescription("Total analysis capability runs"))
	if err != nil {
		return nil, fmt.Errorf("create analysis_runs_total: %w", err)
	}

	adapterDuration, err := meter.Float64Histogram("analysis_run_duration_seconds",
		metric.WithDescription("Analysis capability run duration in seconds"))
	if err != nil {
		return nil, fmt.Errorf("create analysis_run_duration_seconds: %w", err)
	}

	activeSessions, err := meter.Int64UpDownCounter("dashboard_sessions_active",
		metric.WithDescription("Currently active dashboard sessions"))
	if err != nil {
		return nil, fmt.Errorf("create dashboard_sessions_active: %w", err)
	}

	return &AppMetrics{
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		AdapterRuns:     adapterRuns,
		AdapterDuration: adapterDuration,
		ActiveSessions:  activeSessions,
	}, nil
}

// RecordAdapterRun records one analysis capability invocation
func (m *AppMetrics) RecordAdapterRun(ctx context.Context, capability string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.String("status", status),
	)
	m.AdapterRuns.Add(ctx, 1, attrs)
	m.AdapterDuration.Record(ctx, duration.Seconds(), attrs)
}
