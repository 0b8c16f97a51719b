/*
Package tracing installs the global OpenTelemetry tracer provider.

When no OTLP endpoint is configured the global no-op provider stays in place and
spans opened by the services cost next to nothing.
*/
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"bookfinder/internal/pkg/logx"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "bookfinder"

// Shutdown flushes and stops the installed provider.
type Shutdown func(ctx context.Context) error

// Setup exports spans over OTLP/HTTP to endpoint (host:port or URL).
// An empty endpoint leaves tracing disabled and returns a no-op Shutdown.
func Setup(ctx context.Context, endpoint, environment string) (Shutdown, error) {
	if endpoint == "" {
		logx.Info("Tracing disabled, no OTLP endpoint configured")
		return func(context.Context) error { return nil }, nil
	}

	var opts []otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		if environment == "development" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", ServiceName),
		attribute.String("deployment.environment", environment),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logx.Info("Tracing enabled", "endpoint", endpoint)

	return provider.Shutdown, nil
}
