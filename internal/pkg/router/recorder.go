package router

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"
)

const maxLoggedBodyBytes = 32 * 1024 // 32KB

// statusRecorder captures the status, size and (capped) body of a response.
// A nil body disables capture, which streaming endpoints rely on.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   *bytes.Buffer
	capped bool
	err    error
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.body != nil && !w.capped && len(p) > 0 {
		remaining := maxLoggedBodyBytes - w.body.Len()
		switch {
		case remaining <= 0:
			w.capped = true
		case len(p) > remaining:
			w.body.Write(p[:remaining])
			w.capped = true
		default:
			w.body.Write(p)
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError records the handler error for the span.
func (w *statusRecorder) SetError(err error) {
	w.err = err
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
