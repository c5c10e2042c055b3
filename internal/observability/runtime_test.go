package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sandeepkv93/debt-ledger-service/internal/config"
)

func TestRuntimeShutdownNilAndEmpty(t *testing.T) {
	var r *Runtime
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil runtime shutdown: %v", err)
	}

	r = &Runtime{}
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("empty runtime shutdown: %v", err)
	}
}

func TestInitRuntimeAllDisabled(t *testing.T) {
	cfg := &config.Config{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, err := InitRuntime(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("init runtime disabled: %v", err)
	}
	if r == nil || r.MeterProvider == nil || r.TracerProvider == nil || r.LoggerProvider != nil {
		t.Fatalf("unexpected runtime providers: %+v", r)
	}

	_, span := StartSpan(context.Background(), "test.span")
	span.End()

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("runtime shutdown: %v", err)
	}
}

func TestInitRuntimeExporterErrorBranches(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"metrics", config.Config{OTELMetricsEnabled: true}},
		{"tracing", config.Config{OTELTracingEnabled: true, OTELTraceSamplingRatio: 1}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.OTELExporterOTLPEndpoint = "%"
			cfg.OTELExporterOTLPInsecure = true
			cfg.OTELServiceName = "svc"
			cfg.OTELEnvironment = "test"
			if _, err := InitRuntime(context.Background(), &cfg, logger); err == nil {
				t.Fatalf("expected runtime init error from %s exporter", tc.name)
			}
		})
	}
}
