package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

type errorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
// A *Raw payload is written as-is.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
}

// HealthCheck reports whether a dependency behind the router can serve requests.
type HealthCheck func(ctx context.Context) error

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr      *httprouter.Router
	name    string
	mws     []Middleware
	checkMu sync.RWMutex
	checks  map[string]HealthCheck
}

// NewRouter builds the default application router with standard middleware.
func NewRouter(cfg Config) *Router {
	if cfg.Instrument == nil {
		cfg.Instrument = instrument.NewNoop()
	}

	name := "gotp"
	if cfg.Config != nil && cfg.Config.GetString("app.name") != "" {
		name = cfg.Config.GetString("app.name")
	}

	ro := &Router{
		name:   name,
		checks: make(map[string]HealthCheck),
		mws: []Middleware{
			middlewareRecoverer,
			middlewareLoopback(cfg.Config != nil && cfg.Config.GetBool("app.server.loopback_only")),
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
		},
	}

	ro.hr = &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ro.hr.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		writeJSON(w, errorResponse{Message: "Welcome to API " + name}, http.StatusNotFound)
	})
	ro.hr.GET("/health", ro.health)

	return ro
}

// AddHealthCheck registers fn under name. /health reports "down" and answers
// 503 while any registered check fails.
func (r *Router) AddHealthCheck(name string, fn HealthCheck) {
	r.checkMu.Lock()
	defer r.checkMu.Unlock()

	r.checks[name] = fn
}

func (r *Router) health(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	r.checkMu.RLock()
	checks := maps.Clone(r.checks)
	r.checkMu.RUnlock()

	data := map[string]any{"status": "up", "service": r.name}
	if len(checks) == 0 {
		writeJSON(w, successResponse{Message: "ok", Data: data}, http.StatusOK)
		return
	}

	code := http.StatusOK
	results := make(map[string]string, len(checks))
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		results[name] = "up"
		if err := checks[name](req.Context()); err != nil {
			slog.WarnContext(req.Context(), "health check failed", "check", name, "error", err)
			results[name] = "down"
			data["status"] = "down"
			code = http.StatusServiceUnavailable
		}
	}
	data["checks"] = results

	writeJSON(w, successResponse{Message: "ok", Data: data}, code)
}

func (r *Router) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled error reached the router", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	errResp := errorResponse{Message: gerr.Msg(), Code: gerr.Code().String()}

	var errValidate validator.V10ValidationError
	if errors.As(err, &errValidate) {
		errResp.Error = errValidate.Values()
	} else if len(gerr.Fields()) > 0 {
		errResp.Error = gerr.Fields()
	}

	writeJSON(w, errResp, gerr.StatusCode())
}

// writeSuccess renders resp in the JSON envelope. Responses may override the
// status, message and meta through StatusCode, Message and Meta methods.
func (r *Router) writeSuccess(w http.ResponseWriter, resp any) {
	if raw, ok := resp.(*Raw); ok {
		writeRaw(w, raw)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	if code == http.StatusNoContent || resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	env := successResponse{Message: "request has been successfully", Data: resp}
	if m, ok := resp.(interface{ Message() string }); ok {
		env.Message = m.Message()
	}
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		env.Meta = m.Meta()
	}

	writeJSON(w, env, code)
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// GETRaw registers a GET endpoint that writes directly to the response writer.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.mws, mws...)...))
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint using the application Handler signature.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// DELETE registers a DELETE endpoint using the application Handler signature.
func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			r.writeError(re.Context(), w, err)
			return
		}
		r.writeSuccess(w, resp)
	}), append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
