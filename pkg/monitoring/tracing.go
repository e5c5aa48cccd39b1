package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds tracing configuration
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Environment    string
	SamplingRate   float64
}

// TracingManager handles distributed tracing
type TracingManager struct {
	tracer   trace.Tracer
	config   *TracingConfig
	provider *sdktrace.TracerProvider
}

// NewTracingManager creates a tracing manager.
// Without an OTLP endpoint spans are recorded by the global no-op provider.
func NewTracingManager(ctx context.Context, config *TracingConfig) (*TracingManager, error) {
	if config.Endpoint == "" {
		return &TracingManager{
			tracer: otel.Tracer(config.ServiceName),
			config: config,
		}, nil
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("deployment.environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SamplingRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracingManager{
		tracer:   tp.Tracer(config.ServiceName),
		config:   config,
		provider: tp,
	}, nil
}

// StartHTTPSpan starts a span for HTTP requests
func (tm *TracingManager) StartHTTPSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, fmt.Sprintf("%s %s", method, route),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		),
	)
}

// StartLedgerSpan starts a span for a ledger operation
func (tm *TracingManager) StartLedgerSpan(ctx context.Context, network, operation string) (context.Context, trace.Span) {
	return tm.tracer.Start(ctx, "ledger."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ledger.system", "hedera"),
			attribute.String("ledger.network", network),
			attribute.String("ledger.operation", operation),
		),
	)
}

// RecordError records an error in the span
func (tm *TracingManager) RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// ExtractTraceContext reads propagated trace headers
func (tm *TracingManager) ExtractTraceContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// InjectTraceContext writes trace headers for the caller
func (tm *TracingManager) InjectTraceContext(ctx context.Context, carrier propagation.TextMapCarrier) {
	otel.GetTextMapPropagator().Inject(ctx, carrier)
}

// Shutdown flushes and stops the tracer provider
func (tm *TracingManager) Shutdown(ctx context.Context) error {
	if tm.provider == nil {
		return nil
	}
	return tm.provider.Shutdown(ctx)
}
