package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// StreamKeyBytes is the entropy of a generated stream key. 32 random bytes
// make accidental collisions effectively impossible; uniqueness is still
// enforced by the database.
const StreamKeyBytes = 32

// GenStreamKey generates a random URL-safe stream key.
func GenStreamKey() (string, error) {
	b := make([]byte, StreamKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
