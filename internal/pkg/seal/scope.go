package seal

// Purpose names what a sealed value is used for.
type Purpose string

const (
	// PurposeSnapshot scopes encryption to persisted account snapshots.
	PurposeSnapshot Purpose = "snapshot"
)

// Scope binds a ciphertext to where it is stored and what it holds.
type Scope struct {
	// Key is the storage key the value lives under.
	Key string
	// Purpose is the encryption purpose.
	Purpose Purpose
}
