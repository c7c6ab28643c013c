// Package checksum computes content digests used for change detection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/starford/virtualta/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Document digests every field of d. Fields are NUL-separated so that
// moving text between fields changes the digest.
func Document(d models.Document) string {
	h := sha256.New()
	for _, f := range []string{d.URL, d.Title, d.Content, string(d.Type), d.SectionOrDate} {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
