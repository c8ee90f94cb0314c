package goerror

import (
	"fmt"
	"net/http"
)

// Type classifies errors into the buckets the router renders differently.
type Type int

const (
	// TypeServer represents server-side failures. Their cause is never shown.
	TypeServer Type = iota
	// TypeBusiness represents a well-formed request the current state refuses.
	TypeBusiness
	// TypeValidation represents input that failed decoding or validation.
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

// String returns the string representation of the error type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return "ERROR_TYPE_UNKNOWN"
}

// Code is a stable identifier rendered to clients and mapped to an HTTP status.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates a body, file or QR payload that cannot be decoded.
	CodeInvalidFormat
	// CodeInvalidInput indicates decoded input that failed validation.
	CodeInvalidInput
	// CodeNotFound indicates a missing account.
	CodeNotFound
	// CodeUnsupported indicates well-formed input the application does not
	// understand, such as a future bundle version.
	CodeUnsupported
	// CodeTooLarge indicates a body or upload above the accepted size.
	CodeTooLarge
	// CodeUnavailable indicates the request could not be served right now.
	CodeUnavailable
	// CodeTimeout indicates a timeout.
	CodeTimeout
)

var codes = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {name: "ERROR_CODE_INTERNAL", status: http.StatusInternalServerError},
	CodeInvalidFormat: {name: "ERROR_CODE_INVALID_FORMAT", status: http.StatusBadRequest},
	CodeInvalidInput:  {name: "ERROR_CODE_INVALID_INPUT", status: http.StatusUnprocessableEntity},
	CodeNotFound:      {name: "ERROR_CODE_NOT_FOUND", status: http.StatusNotFound},
	CodeUnsupported:   {name: "ERROR_CODE_UNSUPPORTED", status: http.StatusUnprocessableEntity},
	CodeTooLarge:      {name: "ERROR_CODE_TOO_LARGE", status: http.StatusRequestEntityTooLarge},
	CodeUnavailable:   {name: "ERROR_CODE_UNAVAILABLE", status: http.StatusServiceUnavailable},
	CodeTimeout:       {name: "ERROR_CODE_TIMEOUT", status: http.StatusRequestTimeout},
}

// String returns the string representation of the error code.
func (c Code) String() string {
	if meta, ok := codes[c]; ok {
		return meta.name
	}

	return codes[CodeInternal].name
}

// Error is a structured error used across the application.
//
// It wraps an optional cause and carries the user-facing message, its type,
// its code and, for validation failures, a field to message map.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface. The cause wins over the message so
// logs keep the original failure.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	case e.errType == TypeValidation:
		return "Validation violation"
	case e.errType == TypeBusiness:
		return "Request refused"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s message=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if meta, ok := codes[e.code]; ok {
		return meta.status
	}

	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewUnavailable creates a server-type error for a request that may succeed later.
func NewUnavailable(err error) error {
	return newError(err, "Service temporarily unavailable", TypeServer, CodeUnavailable)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error. A non-nil err is kept as the
// cause; otherwise kv is read as field, message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return NewInvalidInputFields(nil, fields)
}

// NewInvalidInputFields creates a validation error carrying a field to message map.
func NewInvalidInputFields(err error, fields map[string]string) error {
	e := newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = fields

	return e
}

// NewInvalidFormat creates a validation error for input that cannot be decoded.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	return newError(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}

// NewTooLarge creates a validation error for a body above limit bytes.
func NewTooLarge(limit int64) error {
	return newError(nil, fmt.Sprintf("Request body exceeds %d bytes", limit), TypeValidation, CodeTooLarge)
}
