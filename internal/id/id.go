package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Short generates a 16-character random hex ID. Suitable for
// user-facing IDs where brevity and readability in logs matter more
// than the collision resistance of a full UUID.
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
