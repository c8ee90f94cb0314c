// Package otp generates one-time passwords as defined by RFC 4226 (HOTP) and
// RFC 6238 (TOTP).
//
// Secrets are handled in their canonical base32 form: NormalizeSecret strips
// whitespace and upper-cases, ValidSecret enforces the manual-entry rules and
// DecodeSecret turns the text back into key bytes. Generate computes a code
// for an explicit counter, GenerateTOTP derives the counter from wall-clock
// time and Remaining reports how long the current code stays valid.
package otp
