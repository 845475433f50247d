// Package address derives owner addresses from raw owner keys.
//
// An owner field on the wire is the URL-safe base64 encoding of the owner's
// public key. The address is the URL-safe base64 encoding of the SHA-256
// hash of the decoded key bytes. Affinity lists in the scheduler registry
// are matched against the derived address, never the raw key.
package address

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// Hash returns the SHA-256 digest of data.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// FromOwner derives the owner address from a URL-safe base64 encoded owner
// key. Padded and unpadded encodings are both accepted.
func FromOwner(owner string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(owner, "="))
	if err != nil {
		return "", fmt.Errorf("failed to parse owner: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(Hash(raw)), nil
}
