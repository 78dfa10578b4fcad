package main

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/weegigs/wee-contracts-go/support"
	"github.com/weegigs/wee-contracts-go/we"
)

func exporter(ctx context.Context, cfg support.Config) (trace.SpanExporter, error) {
	switch cfg.TelemetryExporter {
	case "", "none":
		return nil, nil
	case "console":
		return we.ConsoleExporter()
	case "honeycomb":
		if cfg.HoneycombTeam == "" {
			return nil, errors.New("HONEYCOMB_TEAM is not set")
		}
		return we.HoneycombExporter(ctx, cfg.HoneycombTeam, cfg.HoneycombDataset)
	case "jaeger":
		return we.JaegerExporter("")
	default:
		return nil, errors.Errorf("unknown TELEMETRY_EXPORTER %q", cfg.TelemetryExporter)
	}
}

func installTelemetry(ctx context.Context, cfg support.Config) (func(context.Context) error, error) {
	spans, err := exporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if spans == nil {
		return func(context.Context) error { return nil }, nil
	}

	return we.InstallTracing(cfg.Service, spans), nil
}
