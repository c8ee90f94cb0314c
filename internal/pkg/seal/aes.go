package seal

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Ciphertext format (binary):
// [0..3]   magic "GOTS"
// [4..5]   uint16 version (currently 1)
// [6..17]  12-byte nonce
// [18..]   gcm.Seal output (ciphertext + tag)
const aesGCMVersion uint16 = 1

var magic = []byte("GOTS")

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
	headerLen    = 4 + 2 + gcmNonceSize
)

var (
	// ErrNotConfigured indicates a missing key provider.
	ErrNotConfigured = errors.New("seal: sealer not configured")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("seal: plaintext is empty")
	// ErrInvalidKeyLength indicates the key length is invalid.
	ErrInvalidKeyLength = errors.New("seal: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("seal: ciphertext too short")
	// ErrNotSealed indicates the input does not carry the sealed header.
	ErrNotSealed = errors.New("seal: value is not sealed")
	// ErrUnsupportedVersion indicates an unsupported ciphertext version.
	ErrUnsupportedVersion = errors.New("seal: unsupported ciphertext version")
	// ErrOpenFailed indicates decryption failure.
	ErrOpenFailed = errors.New("seal: open failed")
	// ErrMissingKey indicates a missing master key.
	ErrMissingKey = errors.New("seal: missing key")
)

// AESGCM implements Sealer using AES-256-GCM.
type AESGCM struct {
	keys KeyProvider
}

// NewAESGCM constructs an AES-GCM sealer.
func NewAESGCM(keys KeyProvider) *AESGCM {
	return &AESGCM{keys: keys}
}

// IsSealed reports whether data starts with the sealed header.
func IsSealed(data []byte) bool {
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic)
}

// Seal encrypts plaintext, binding the result to scope via AAD.
func (e *AESGCM) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if e == nil || e.keys == nil {
		return nil, ErrNotConfigured
	}
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.gcm(scope)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal: nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, scopeAAD(scope))

	out := make([]byte, headerLen+len(sealed))
	copy(out[0:4], magic)
	binary.BigEndian.PutUint16(out[4:6], aesGCMVersion)
	copy(out[6:headerLen], nonce)
	copy(out[headerLen:], sealed)

	return out, nil
}

// Open decrypts ciphertext, requiring the same scope AAD used to seal it.
func (e *AESGCM) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	if e == nil || e.keys == nil {
		return nil, ErrNotConfigured
	}
	if !IsSealed(ciphertext) {
		return nil, ErrNotSealed
	}
	if len(ciphertext) < headerLen+1 {
		return nil, ErrCiphertextTooShort
	}

	version := binary.BigEndian.Uint16(ciphertext[4:6])
	if version != aesGCMVersion {
		return nil, fmt.Errorf("seal: unsupported ciphertext version %d: %w", version, ErrUnsupportedVersion)
	}

	gcm, err := e.gcm(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[6:headerLen], ciphertext[headerLen:], scopeAAD(scope))
	if err != nil {
		// Wrong key, wrong scope and tampering are indistinguishable on purpose.
		return nil, ErrOpenFailed
	}
	return plain, nil
}

func (e *AESGCM) gcm(scope Scope) (cipher.AEAD, error) {
	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("seal: key provider error: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("seal: invalid key length %d (want %d for AES-256): %w", len(key), aesKeyLen, ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("seal: aes init failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("seal: gcm init failed: %w", err)
	}

	return gcm, nil
}

// scopeAAD hashes a labelled canonical form of the scope into fixed-length AAD.
func scopeAAD(s Scope) []byte {
	canonical := fmt.Sprintf("key=%s\npurpose=%s\n", s.Key, s.Purpose)
	sum := sha256.Sum256([]byte(canonical))
	return sum[:]
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	// KeyBytes is the raw AES key material.
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingKey
	}
	k := make([]byte, len(p.KeyBytes))
	copy(k, p.KeyBytes)
	return k, nil
}

// DerivedKeyProvider derives a distinct 32-byte key per purpose from a master
// secret with HKDF-SHA256.
type DerivedKeyProvider struct {
	// Master is the input keying material.
	Master []byte
	// Salt is the optional HKDF salt.
	Salt []byte
}

// Key derives the key for scope.Purpose.
func (p DerivedKeyProvider) Key(scope Scope) ([]byte, error) {
	if len(p.Master) == 0 {
		return nil, ErrMissingKey
	}

	r := hkdf.New(sha256.New, p.Master, p.Salt, []byte("gotp/"+string(scope.Purpose)))
	key := make([]byte, aesKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}
	return key, nil
}
