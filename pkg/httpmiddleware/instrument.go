package httpmiddleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument records per-request count and latency metrics through the given
// meter provider. Metric creation failures degrade to a pass-through rather
// than failing startup.
func Instrument(name string, mp metric.MeterProvider) Middleware {
	meter := mp.Meter(name)

	requests, reqErr := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Completed HTTP requests"),
	)
	duration, durErr := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	)
	if reqErr != nil || durErr != nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.Int("http.response.status_code", rec.status),
			)
			ctx := r.Context()
			requests.Add(ctx, 1, attrs)
			duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		})
	}
}
