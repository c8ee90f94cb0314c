package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

func maskHeaders(headers http.Header, maskKeys map[string]struct{}) http.Header {
	if len(maskKeys) == 0 {
		return headers
	}

	result := headers.Clone()
	for key := range result {
		if _, found := maskKeys[strings.ToLower(key)]; found {
			result.Set(key, "***")
		}
	}
	return result
}

func matchedRoutePath(r *http.Request) string {
	pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
	if pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

func isEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// describeBody renders a captured body for the log line. Only JSON is logged
// (masked); text and binary payloads may carry provisioning URIs or codes.
func describeBody(contentType string, body []byte, maskKeys map[string]struct{}) any {
	if len(body) == 0 {
		return nil
	}

	if isJSON(contentType) || contentType == "" {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			return instrument.MaskValue(decoded, maskKeys)
		}
	}

	if ct := strings.TrimSpace(contentType); ct != "" && !isJSON(ct) {
		return "<" + ct + " body omitted>"
	}
	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	return "<unparsed body omitted>"
}

func readRequestBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	limited := io.LimitReader(r.Body, maxLoggedBodyBytes+1)
	//nolint:errcheck // best effort for logging only
	reqBodyBytes, _ := io.ReadAll(limited)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(reqBodyBytes), r.Body))
	if len(reqBodyBytes) > maxLoggedBodyBytes {
		return reqBodyBytes[:maxLoggedBodyBytes]
	}
	return reqBodyBytes
}

func responseBody(rec *statusRecorder, maskKeys map[string]struct{}) any {
	if rec.body == nil {
		return nil
	}

	body := describeBody(rec.Header().Get("Content-Type"), rec.body.Bytes(), maskKeys)
	if rec.capped {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	m.requests, err = meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return m
}

func (m httpMetrics) record(ctx context.Context, elapsed time.Duration, attrs []attribute.KeyValue) {
	if m.requests != nil {
		m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Milliseconds()), metric.WithAttributes(attrs...))
	}
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	var maskKeys map[string]struct{}
	if cfg != nil {
		maskKeys = instrument.MaskKeys(cfg.GetArray("instrument.log_mask_fields"))
	}
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(
				r.Context(),
				r.Method+" "+route,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"target", r.URL.Path,
				"headers", maskHeaders(r.Header, maskKeys),
				"body", describeBody(r.Header.Get("Content-Type"), readRequestBody(r), maskKeys),
			)

			rec := &statusRecorder{ResponseWriter: w}
			if !isEventStream(r) {
				rec.body = &bytes.Buffer{}
			}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status >= http.StatusInternalServerError && rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}

			span.SetAttributes(attrs...)
			span.SetAttributes(
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.bytes),
			)
			metrics.record(ctx, time.Since(start), attrs)

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"target", r.URL.Path,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"body", responseBody(rec, maskKeys),
			)
		})
	}
}
