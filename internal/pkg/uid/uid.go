// Package uid generates identifiers for accounts and request correlation.
package uid

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}
