// Package otpauth reads and writes otpauth:// provisioning URIs, the format
// authenticator apps exchange through QR codes.
//
// Only the time-based variant (otpauth://totp/...) is accepted. Parse never
// panics; every rejection is reported as an error wrapping ErrParse.
package otpauth
