package seal

// Sealer encrypts and decrypts values bound to a scope.
type Sealer interface {
	// Seal returns ciphertext for the given plaintext and scope.
	Seal(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Open returns plaintext for the given ciphertext and scope.
	Open(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys. For AES-256-GCM keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope.
	Key(scope Scope) ([]byte, error)
}
