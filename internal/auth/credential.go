// Package auth provides node credential generation used by the registration
// handler.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// CredentialBytes is the entropy of a node credential. Encoded as lowercase
// hex, the issued token is twice this many characters.
const CredentialBytes = 32

// GenerateCredential returns a cryptographically random node credential as a
// lowercase hex string. It is issued once at registration and never again.
func GenerateCredential() (string, error) {
	b := make([]byte, CredentialBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
