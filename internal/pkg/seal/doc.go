// Package seal encrypts small blobs at rest with AES-256-GCM.
//
// Every ciphertext is bound to a Scope through GCM additional data, so a value
// sealed for one storage key cannot be opened under another.
package seal
