package otpauth

import (
	"bytes"
	"fmt"
	"image/png"

	libOTP "github.com/pquerna/otp"
)

// DefaultQRSize is the edge length in pixels of rendered QR codes.
const DefaultQRSize = 256

// QRCode renders uri as a square PNG QR code of size pixels.
func QRCode(uri string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}

	key, err := libOTP.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("otpauth: render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("otpauth: encode png: %w", err)
	}

	return buf.Bytes(), nil
}
