package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/verse-recommender/telemetry"

	// HeaderTraceID carries the server span's trace ID on every response.
	HeaderTraceID = "X-Trace-ID"

	// unmatchedRoute labels requests gin could not route, keeping route cardinality bounded.
	unmatchedRoute = "unmatched"
)

// HTTPMetrics holds HTTP server instruments.
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics creates HTTP server instruments on the global meter provider.
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware returns the server instrumentation chain: otelgin spans named
// after serviceName, then request metrics and the X-Trace-ID header.
func Middleware(serviceName string) gin.HandlersChain {
	metrics, err := NewHTTPMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{
		otelgin.Middleware(serviceName),
		metrics.handler(),
	}
}

// handler records request metrics. A nil receiver only sets the trace header.
func (m *HTTPMetrics) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// The header must land before the handler writes the body.
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if m == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		start := time.Now()
		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", routeLabel(c)),
		}

		m.activeRequests.Add(ctx, 1, metric.WithAttributes(base...))
		defer m.activeRequests.Add(ctx, -1, metric.WithAttributes(base...))

		c.Next()

		attrs := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.requestTotal.Add(ctx, 1, attrs)
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}

	return unmatchedRoute
}
