package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetParam reads a path parameter from the request context (as stored by httprouter).
func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetQuery returns the trimmed query parameter value.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// GetQueryInt parses an integer query parameter, returning def when it is absent.
func (r *Request) GetQueryInt(key string, def int) (int, error) {
	queryValue := r.GetQuery(key)
	if queryValue == "" {
		return def, nil
	}

	value, err := strconv.Atoi(queryValue)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Invalid query " + key)
	}

	return value, nil
}

// ReadBody reads at most limit bytes of the raw body. Larger bodies are rejected.
func (r *Request) ReadBody(limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, goerror.NewInvalidFormat()
	}

	return ReadLimited(r.Body, limit)
}

// ReadLimited reads at most limit bytes from rd. Longer input is rejected.
func ReadLimited(rd io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, limit+1))
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}
	if int64(len(data)) > limit {
		return nil, goerror.NewTooLarge(limit)
	}

	return data, nil
}

// DecodeBody decodes the JSON body into dst.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return goerror.NewInvalidFormat()
	}

	return nil
}

// StreamSingleFile returns the first multipart file matching the form field name.
func (r *Request) StreamSingleFile(name string) (io.ReadCloser, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		return nil, goerror.NewInvalidFormat("Invalid request content-type")
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, goerror.NewInvalidFormat()
	}

	var file io.ReadCloser
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerror.NewInvalidFormat()
		}

		if part.FormName() == name {
			file = part
			break
		}

		if _, errCopy := io.Copy(io.Discard, part); errCopy != nil {
			if err := part.Close(); err != nil {
				return nil, goerror.NewInvalidFormat(err.Error())
			}
			return nil, goerror.NewInvalidFormat(errCopy.Error())
		}
		if err := part.Close(); err != nil {
			return nil, goerror.NewInvalidFormat(err.Error())
		}
	}

	if file == nil {
		return nil, goerror.NewInvalidFormat()
	}

	return file, nil
}
