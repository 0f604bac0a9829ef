package tracing

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	otlpgrpc "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	DefaultServiceName = "search-backend"
	DefaultEndpoint    = "api.honeycomb.io:443"
)

type Options struct {
	ServiceName string
	Version     string
	APIKey      string
	Endpoint    string
	Dataset     string
	SampleRatio float64
}

// State is the process-wide export configuration. It is created once by
// Configure and read-only afterwards.
type State struct {
	Enabled  bool
	Endpoint string

	provider *sdktrace.TracerProvider
}

// Shutdown flushes pending spans and stops the exporter. Safe to call on a
// disabled state.
func (s *State) Shutdown(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Shutdown(ctx)
}

// ForceFlush drains the batch queue without shutting down.
func (s *State) ForceFlush(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.ForceFlush(ctx)
}

var (
	configureMu sync.Mutex
	configured  *State
)

// Configure wires the global tracer provider to an OTLP exporter. It is
// idempotent: the second and later calls return the state created by the
// first and change nothing.
//
// A missing APIKey disables export entirely; every span, attribute and
// baggage operation still works, producing no output. Exporter construction
// failures also fall back to the disabled state: tracing must never be able
// to take the service down.
func Configure(ctx context.Context, opts Options) *State {
	configureMu.Lock()
	defer configureMu.Unlock()

	if configured != nil {
		return configured
	}

	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	// zero is a real setting (keep nothing); only out-of-range values fall
	// back to keeping everything
	if opts.SampleRatio < 0 || opts.SampleRatio > 1 {
		opts.SampleRatio = 1.0
	}

	if opts.APIKey == "" {
		configured = &State{Enabled: false, Endpoint: opts.Endpoint}
		return configured
	}

	headers := map[string]string{
		"x-honeycomb-team": opts.APIKey,
	}
	if opts.Dataset != "" {
		// legacy dataset-scoped accounts route on this header
		headers["x-honeycomb-dataset"] = opts.Dataset
	}

	// the env var convention supplies a URL; the grpc exporter wants host:port
	endpoint := strings.TrimPrefix(strings.TrimPrefix(opts.Endpoint, "https://"), "http://")

	exporter, err := otlpgrpc.New(ctx,
		otlpgrpc.WithEndpoint(endpoint),
		otlpgrpc.WithHeaders(headers),
	)
	if err != nil {
		configured = &State{Enabled: false, Endpoint: opts.Endpoint}
		return configured
	}

	res, _ := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.Version),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSpanProcessor(baggageCopier{}),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	configured = &State{Enabled: true, Endpoint: opts.Endpoint, provider: tp}
	return configured
}

// reset is for tests only.
func reset() {
	configureMu.Lock()
	defer configureMu.Unlock()
	configured = nil
}
