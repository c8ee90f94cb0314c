package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("disk")), want: http.StatusInternalServerError},
		{name: "not found", err: NewBusiness("account not found", CodeNotFound), want: http.StatusNotFound},
		{name: "unsupported", err: NewBusiness("unsupported bundle version", CodeUnsupported), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat("invalid QR code"), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "odd kv", err: NewInvalidInput(nil, "only-key"), want: http.StatusBadRequest},
		{name: "too large", err: NewTooLarge(1024), want: http.StatusRequestEntityTooLarge},
		{name: "unavailable", err: NewUnavailable(errors.New("no worker")), want: http.StatusServiceUnavailable},
		{name: "unknown code", err: &Error{code: Code(99)}, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestError_Messages(t *testing.T) {
	cause := errors.New("disk full")
	err := NewServer(cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "disk full", err.Error())
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.Equal(t, TypeServer, gerr.Type())
	assert.Contains(t, gerr.String(), "code=ERROR_CODE_INTERNAL")
	assert.Contains(t, gerr.String(), "type=ERROR_TYPE_SERVER")

	err = NewInvalidFormat()
	assert.Equal(t, "Invalid request body", err.Error())

	err = NewTooLarge(4096)
	assert.Equal(t, "Request body exceeds 4096 bytes", err.Error())

	assert.Equal(t, "Request refused", (&Error{errType: TypeBusiness}).Error())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(7).String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "secret", "secret is invalid", "digits", "digits must be 1-10")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"secret": "secret is invalid", "digits": "digits must be 1-10"}, gerr.Fields())

	err = NewInvalidInputFields(errors.New("bundle"), map[string]string{"accounts[0].digits": "too big"})
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, CodeInvalidInput, gerr.Code())
	assert.Equal(t, "too big", gerr.Fields()["accounts[0].digits"])
}
