package instrument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const (
	maskedValue = "***"
	uriScheme   = "otpauth://"
)

// LogOptions configures the logger built by NewLogger.
type LogOptions struct {
	// Service is attached to every record as "service".
	Service string
	// Level is the minimum level written. The zero value is Info.
	Level slog.Level
	// Provider, when set, mirrors records to OpenTelemetry logs.
	Provider *sdklog.LoggerProvider
	// MaskFields lists attribute and JSON member names whose values are masked.
	MaskFields []string
}

// ParseLevel maps debug, info, warn and error to a slog level. Anything else is Info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}

	return level
}

// InitLogging installs NewLogger(w, opts) as the process-wide slog default.
func InitLogging(w io.Writer, opts LogOptions) {
	slog.SetDefault(NewLogger(w, opts))
}

// NewLogger builds a JSON logger that masks sensitive values, hides
// provisioning URIs and stamps the correlation ID carried by the context.
func NewLogger(w io.Writer, opts LogOptions) *slog.Logger {
	handlers := []slog.Handler{slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       opts.Level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})}
	if opts.Provider != nil {
		handlers = append(handlers, otelslog.NewHandler(opts.Service, otelslog.WithLoggerProvider(opts.Provider)))
	}

	var handler slog.Handler = &fanoutHandler{handlers: handlers}
	if len(handlers) == 1 {
		handler = handlers[0]
	}

	return slog.New(&contextHandler{
		Handler: &maskHandler{handler: handler, maskKeys: MaskKeys(opts.MaskFields)},
		service: opts.Service,
	})
}

func renameAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
	}

	return a
}

type contextHandler struct {
	slog.Handler
	service string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	r.AddAttrs(slog.String("service", h.service))

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), service: h.service}
}

// fanoutHandler writes each record to every handler enabled for its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return lo.SomeBy(f.handlers, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fanoutHandler{handlers: lo.Map(f.handlers, func(h slog.Handler, _ int) slog.Handler { return h.WithAttrs(attrs) })}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	return &fanoutHandler{handlers: lo.Map(f.handlers, func(h slog.Handler, _ int) slog.Handler { return h.WithGroup(name) })}
}

type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr, h.maskKeys))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := lo.Map(attrs, func(a slog.Attr, _ int) slog.Attr { return maskAttr(a, h.maskKeys) })
	return &maskHandler{handler: h.handler.WithAttrs(masked), maskKeys: h.maskKeys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), maskKeys: h.maskKeys}
}

// MaskKeys lower-cases and trims fields into a lookup set. Blank entries are ignored.
func MaskKeys(fields []string) map[string]struct{} {
	return lo.SliceToMap(
		lo.Compact(lo.Map(fields, func(f string, _ int) string { return strings.ToLower(strings.TrimSpace(f)) })),
		func(f string) (string, struct{}) { return f, struct{}{} },
	)
}

func masked(key string, maskKeys map[string]struct{}) bool {
	_, found := maskKeys[strings.ToLower(key)]
	return found
}

func maskAttr(attr slog.Attr, maskKeys map[string]struct{}) slog.Attr {
	if masked(attr.Key, maskKeys) {
		return slog.String(attr.Key, maskedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		attr.Value = slog.GroupValue(lo.Map(attr.Value.Group(), func(ga slog.Attr, _ int) slog.Attr {
			return maskAttr(ga, maskKeys)
		})...)
	case slog.KindString:
		attr.Value = slog.StringValue(maskString(attr.Value.String(), maskKeys))
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any, []any:
			attr.Value = slog.AnyValue(MaskValue(v, maskKeys))
		case map[string]string:
			attr.Value = slog.AnyValue(MaskValue(lo.MapValues(v, func(s string, _ string) any { return s }), maskKeys))
		case []byte:
			if out, ok := maskJSON(v, maskKeys); ok {
				attr.Value = slog.StringValue(out)
			}
		}
	}

	return attr
}

// maskString hides provisioning URIs and masks JSON payloads. Other strings pass through.
func maskString(s string, maskKeys map[string]struct{}) string {
	if strings.HasPrefix(strings.ToLower(s), uriScheme) {
		return uriScheme + maskedValue
	}
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return s
	}
	if out, ok := maskJSON([]byte(s), maskKeys); ok {
		return out
	}

	return s
}

func maskJSON(payload []byte, maskKeys map[string]struct{}) (string, bool) {
	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(MaskValue(body, maskKeys))
	if err != nil {
		return "", false
	}

	return string(out), true
}

// MaskValue returns a copy of a decoded JSON value with every object member
// whose key is in maskKeys replaced by "***" and every provisioning URI hidden.
func MaskValue(v any, maskKeys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if masked(k, maskKeys) {
				out[k] = maskedValue
				continue
			}
			out[k] = MaskValue(v2, maskKeys)
		}
		return out
	case []any:
		return lo.Map(val, func(v2 any, _ int) any { return MaskValue(v2, maskKeys) })
	case string:
		if strings.HasPrefix(strings.ToLower(val), uriScheme) {
			return uriScheme + maskedValue
		}
		return val
	default:
		return v
	}
}
