package uid

import "github.com/google/uuid"

// UUID generates RFC 9562 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new time-ordered UUID (v7). It falls back to a random v4
// when the v7 clock sequence cannot be read.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
