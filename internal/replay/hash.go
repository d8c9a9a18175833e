package replay

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash canonicalizes payload and returns "sha256:" plus the hex digest of
// the canonical bytes.
func Hash(payload map[string]any) (string, error) {
	b, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
