package router

import (
	"mime"
	"net/http"
	"strconv"
)

// Raw is a handler result written verbatim instead of the JSON envelope.
// It is used for file downloads and images.
type Raw struct {
	// ContentType is sent as the Content-Type header.
	ContentType string
	// FileName, when set, turns the response into an attachment download.
	FileName string
	// Body is the payload.
	Body []byte
}

// Text returns a plain text Raw response.
func Text(s string) *Raw {
	return &Raw{ContentType: "text/plain; charset=utf-8", Body: []byte(s)}
}

func writeRaw(w http.ResponseWriter, raw *Raw) {
	ct := raw.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(raw.Body)))
	w.Header().Set("Cache-Control", "no-store")
	if raw.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": raw.FileName}))
	}
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck,gosec // client went away
	w.Write(raw.Body)
}
