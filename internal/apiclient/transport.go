package apiclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// bearerRoundTripper attaches the session token to every outgoing request.
// The token is read at dispatch time so a login or logout between queueing
// and sending is reflected on the wire. Anonymous requests go out without
// an Authorization header.
type bearerRoundTripper struct {
	tokens TokenSource
	next   http.RoundTripper
}

func (rt *bearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.tokens != nil {
		if token := rt.tokens(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return rt.next.RoundTrip(req)
}

// metricsRoundTripper records request counts and end to end latency. It
// reports through the global meter provider, which is a no-op unless the
// host application installs one.
type metricsRoundTripper struct {
	next    http.RoundTripper
	counter metric.Int64Counter
	hist    metric.Int64Histogram
}

func newMetricsRoundTripper(next http.RoundTripper) http.RoundTripper {
	meter := otel.Meter(
		"styleai/apiclient",
		metric.WithInstrumentationVersion(otel.Version()),
	)

	counter, err := meter.Int64Counter(
		"http.client.request_count",
		metric.WithDescription("Outgoing request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		return next
	}

	hist, err := meter.Int64Histogram(
		"http.client.duration",
		metric.WithDescription("Outgoing end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return next
	}

	return &metricsRoundTripper{next: next, counter: counter, hist: hist}
}

func (rt *metricsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := rt.next.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.route", req.URL.Path),
		attribute.Int("http.status_code", status),
	)

	rt.counter.Add(req.Context(), 1, attrs)
	rt.hist.Record(req.Context(), time.Since(start).Milliseconds(), attrs)

	return resp, err
}
