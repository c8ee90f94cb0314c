package config

import (
	"io"
	"time"
)

// Config defines the lookups the application performs against its settings.
// Missing keys yield the zero value of the requested type unless a default
// was registered.
type Config interface {
	io.Closer

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetSecond retrieves the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetBinary retrieves the value for key decoded from standard base64.
	// An empty or malformed value yields nil.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key stored as <element1>,<element2>,...
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string
}
