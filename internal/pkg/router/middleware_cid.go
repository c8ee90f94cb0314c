package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative header name used by some clients.
	HeaderRequestID = "X-Request-ID"

	maxCorrelationIDLen = 128
)

// normalizeCID trims v and rejects anything that is not printable ASCII.
func normalizeCID(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > maxCorrelationIDLen {
		v = v[:maxCorrelationIDLen]
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}

func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
