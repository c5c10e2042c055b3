package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
)

type AppMetrics struct {
	authFlowCounter          metric.Int64Counter
	authReqDuration          metric.Float64Histogram
	tokenValidationCounter   metric.Int64Counter
	codeEventCounter         metric.Int64Counter
	notificationCounter      metric.Int64Counter
	notificationDuration     metric.Float64Histogram
	rateLimitDecisionCounter metric.Int64Counter
	rateLimitRetryAfter      metric.Float64Histogram
	middlewareEvents         metric.Int64Counter
	abuseGuardCounter        metric.Int64Counter
	abuseGuardCooldown       metric.Float64Histogram
	ledgerOpCounter          metric.Int64Counter
	ledgerOpDuration         metric.Float64Histogram
	oauthGoogleReqDuration   metric.Float64Histogram
	oauthGoogleErrors        metric.Int64Counter
	repositoryOpsCounter     metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
	databaseStartupCounter   metric.Int64Counter
	databaseStartupDuration  metric.Float64Histogram
	toolCommandRuns          metric.Int64Counter
	toolCommandDuration      metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	views := make([]sdkmetric.Option, 0, 3)
	for _, name := range []string{"auth.request.duration", "ledger.operation.duration", "notification.dispatch.duration"} {
		views = append(views, sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: name},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyBuckets}},
		)))
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(append([]sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
	}, views...)...)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(instrumentationName))
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

type instrumentBuilder struct {
	meter metric.Meter
	err   error
}

func (b *instrumentBuilder) counter(name, desc string) metric.Int64Counter {
	if b.err != nil {
		return nil
	}
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		b.err = fmt.Errorf("create counter %s: %w", name, err)
	}
	return c
}

func (b *instrumentBuilder) seconds(name, desc string) metric.Float64Histogram {
	if b.err != nil {
		return nil
	}
	h, err := b.meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription(desc))
	if err != nil {
		b.err = fmt.Errorf("create histogram %s: %w", name, err)
	}
	return h
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	b := &instrumentBuilder{meter: meter}
	m := &AppMetrics{
		authFlowCounter:          b.counter("auth.flow.events", "Auth state machine transitions by flow and outcome"),
		authReqDuration:          b.seconds("auth.request.duration", "Duration of auth endpoint requests in seconds"),
		tokenValidationCounter:   b.counter("auth.token.validation.events", "Bearer token validation outcomes"),
		codeEventCounter:         b.counter("auth.code.events", "Verification code ledger events"),
		notificationCounter:      b.counter("notification.dispatch.events", "Outbound notification attempts"),
		notificationDuration:     b.seconds("notification.dispatch.duration", "Mail provider send latency in seconds"),
		rateLimitDecisionCounter: b.counter("http.rate_limit.decisions", "Rate limiter allow and deny decisions"),
		rateLimitRetryAfter:      b.seconds("http.rate_limit.retry_after", "Retry-after returned to throttled clients"),
		middlewareEvents:         b.counter("http.middleware.validation.events", "CORS and body limit decisions"),
		abuseGuardCounter:        b.counter("auth.abuse_guard.events", "Auth abuse guard checks and failures"),
		abuseGuardCooldown:       b.seconds("auth.abuse_guard.cooldown", "Cooldown imposed by the auth abuse guard"),
		ledgerOpCounter:          b.counter("ledger.operations", "Contact and debt operations by outcome"),
		ledgerOpDuration:         b.seconds("ledger.operation.duration", "Contact and debt operation latency in seconds"),
		oauthGoogleReqDuration:   b.seconds("auth.oauth.google.request.duration", "Google OAuth provider call latency"),
		oauthGoogleErrors:        b.counter("auth.oauth.google.errors", "Google OAuth failures by reason"),
		repositoryOpsCounter:     b.counter("repository.operations", "Repository calls by outcome"),
		healthCheckResultCounter: b.counter("health.check.results", "Readiness dependency check outcomes"),
		healthCheckDuration:      b.seconds("health.check.duration", "Readiness dependency check latency"),
		databaseStartupCounter:   b.counter("database.startup.events", "Database connect and migrate steps"),
		databaseStartupDuration:  b.seconds("database.startup.duration", "Database startup step latency"),
		toolCommandRuns:          b.counter("tool.command.runs", "Ops CLI command executions"),
		toolCommandDuration:      b.seconds("tool.command.duration", "Ops CLI command latency"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthFlowEvent(ctx context.Context, flow, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.authFlowCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordTokenValidation(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordCodeEvent(ctx context.Context, purpose, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.codeEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("outcome", outcome),
	))
}

func RecordNotificationDispatch(ctx context.Context, kind, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.notificationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func RecordNotificationDuration(ctx context.Context, provider string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.notificationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("provider", provider)))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope string, retryAfter time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(attribute.String("scope", scope)))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.middlewareEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthAbuseGuardEvent(ctx context.Context, scope, action, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.abuseGuardCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func RecordAuthAbuseCooldown(ctx context.Context, scope string, cooldown time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.abuseGuardCooldown.Record(ctx, cooldown.Seconds(), metric.WithAttributes(attribute.String("scope", scope)))
}

func RecordLedgerOperation(ctx context.Context, entity, op, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)
	m.ledgerOpCounter.Add(ctx, 1, attrs)
	m.ledgerOpDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordGoogleOAuthRequestDuration(ctx context.Context, stage, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.oauthGoogleReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

func RecordGoogleOAuthError(ctx context.Context, reason string) {
	m := current()
	if m == nil {
		return
	}
	m.oauthGoogleErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func RecordRepositoryOperation(ctx context.Context, repo, op, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repo),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartup(ctx context.Context, step, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("outcome", outcome),
	))
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("step", step)))
}

func RecordToolCommand(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	)
	m.toolCommandRuns.Add(ctx, 1, attrs)
	m.toolCommandDuration.Record(ctx, duration.Seconds(), attrs)
}
