package game

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Digest hashes the full document. Two documents that replay the same
// actions from the same setup share a digest.
func (d *Document) Digest() string {
	b, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
