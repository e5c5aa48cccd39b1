package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// RequestIDHeader is echoed on every response
const RequestIDHeader = "X-Request-ID"

// MonitoringMiddleware combines metrics, tracing, and logging
type MonitoringMiddleware struct {
	metrics *MetricsCollector
	tracing *TracingManager
	logger  Logger
}

// Logger interface for the monitoring middleware
type Logger interface {
	HTTPRequest(ctx context.Context, method, path, userAgent, clientIP string, statusCode int, duration int64, details map[string]interface{})
}

// RequestIDInjector stores the request id on the context handed to handlers
type RequestIDInjector func(ctx context.Context, requestID string) context.Context

// NewMonitoringMiddleware creates a new monitoring middleware
func NewMonitoringMiddleware(metrics *MetricsCollector, tracing *TracingManager, logger Logger) *MonitoringMiddleware {
	return &MonitoringMiddleware{
		metrics: metrics,
		tracing: tracing,
		logger:  logger,
	}
}

// HTTPMiddleware creates comprehensive HTTP monitoring middleware
func (mm *MonitoringMiddleware) HTTPMiddleware(inject RequestIDInjector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := r.Context()
			if inject != nil {
				ctx = inject(ctx, requestID)
			}

			route := routeTemplate(r)

			ctx = mm.tracing.ExtractTraceContext(ctx, propagation.HeaderCarrier(r.Header))
			ctx, span := mm.tracing.StartHTTPSpan(ctx, r.Method, route)
			defer span.End()

			span.SetAttributes(
				attribute.String("user_agent.original", r.UserAgent()),
				attribute.String("client.address", r.RemoteAddr),
				attribute.String("request.id", requestID),
			)

			wrapper := &monitoringResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			wrapper.Header().Set(RequestIDHeader, requestID)
			mm.tracing.InjectTraceContext(ctx, propagation.HeaderCarrier(wrapper.Header()))

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			duration := time.Since(start)

			if mm.metrics != nil {
				mm.metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapper.statusCode), duration)
			}

			span.SetAttributes(
				attribute.Int("http.response.status_code", wrapper.statusCode),
				attribute.Int64("http.response.body.size", wrapper.bytesWritten),
			)
			if wrapper.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(wrapper.statusCode))
			}

			mm.logger.HTTPRequest(
				ctx,
				r.Method,
				r.URL.Path,
				r.UserAgent(),
				r.RemoteAddr,
				wrapper.statusCode,
				duration.Milliseconds(),
				map[string]interface{}{
					"route":         route,
					"bytes_written": wrapper.bytesWritten,
				},
			)
		})
	}
}

// routeTemplate keeps metric labels bounded by using the matched mux route
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// monitoringResponseWriter wraps http.ResponseWriter to capture response data
type monitoringResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (mrw *monitoringResponseWriter) WriteHeader(code int) {
	if !mrw.wroteHeader {
		mrw.statusCode = code
		mrw.wroteHeader = true
	}
	mrw.ResponseWriter.WriteHeader(code)
}

func (mrw *monitoringResponseWriter) Write(b []byte) (int, error) {
	if !mrw.wroteHeader {
		mrw.wroteHeader = true
	}
	n, err := mrw.ResponseWriter.Write(b)
	mrw.bytesWritten += int64(n)
	return n, err
}
