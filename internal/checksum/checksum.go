// Package checksum computes content digests for recovered files. SHA-1 is
// what the .env format's own SHA1/ sidecar fields carry, so it is also the
// digest the metadata listing records.
package checksum

import (
	"crypto/sha1"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-1 digest of data.
func Sum(data []byte) string {
	h := sha1.Sum(data)
	return hex.EncodeToString(h[:])
}

// SumChunks returns the hex-encoded SHA-1 digest of the concatenation of
// chunks without materializing it.
func SumChunks(chunks [][]byte) string {
	h := sha1.New()
	for _, c := range chunks {
		h.Write(c)
	}
	return hex.EncodeToString(h.Sum(nil))
}
