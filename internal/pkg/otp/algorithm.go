package otp

import (
	"strings"

	libOTP "github.com/pquerna/otp"
)

// Algorithm names the keyed-hash primitive used for code generation.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

// DefaultAlgorithm is used when a credential does not name one.
const DefaultAlgorithm = AlgorithmSHA1

// Algorithms lists every supported algorithm.
var Algorithms = []Algorithm{AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512}

// ParseAlgorithm upper-cases s and resolves it to a supported algorithm.
func ParseAlgorithm(s string) (Algorithm, bool) {
	alg := Algorithm(strings.ToUpper(strings.TrimSpace(s)))
	return alg, alg.Valid()
}

// Valid reports whether a is one of Algorithms.
func (a Algorithm) Valid() bool {
	_, ok := a.library()
	return ok
}

func (a Algorithm) String() string {
	return string(a)
}

func (a Algorithm) library() (libOTP.Algorithm, bool) {
	switch a {
	case AlgorithmSHA1:
		return libOTP.AlgorithmSHA1, true
	case AlgorithmSHA256:
		return libOTP.AlgorithmSHA256, true
	case AlgorithmSHA512:
		return libOTP.AlgorithmSHA512, true
	default:
		return 0, false
	}
}
