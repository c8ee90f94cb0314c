package inbound

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// StreamCodes pushes the code of every account once per tick using SSE.
// Events are "code" with a CodeResponse and "accounts" with the current id
// list whenever accounts are added, changed or removed.
// @Summary Stream codes
// @Tags Codes
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 500 {string} string "streaming unsupported"
// @Failure 503 {string} string "stream rejected"
// @Router /api/v1/codes/stream [get]
func (h *HTTPEndpoint) StreamCodes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	stream, err := h.uc.StreamCodes(ctx)
	if err != nil {
		var gerr *goerror.Error
		code := http.StatusInternalServerError
		if errors.As(err, &gerr) {
			code = gerr.StatusCode()
		}
		http.Error(w, http.StatusText(code), code)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	// heartbeat ping, so proxies won't drop idle connections.
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case evt, ok := <-stream:
			if !ok {
				return
			}

			var payload any = toCodeResponse(evt.Code)
			if evt.Type == usecase.StreamEventAccounts {
				payload = StreamAccountsEvent{IDs: evt.AccountIDs}
			}

			data, err := json.Marshal(payload)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal data", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
