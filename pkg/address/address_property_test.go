package address

import (
	"encoding/base64"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_FromOwner verifies the derivation invariants over arbitrary
// owner keys: a valid encoding always derives, the result is the fixed-width
// URL-safe encoding of a SHA-256 digest, and derivation is deterministic.
func TestProperty_FromOwner(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	keyGen := gen.SliceOf(gen.UInt8())

	properties.Property("valid owner keys always derive a 43 char address", prop.ForAll(
		func(key []byte) bool {
			addr, err := FromOwner(base64.RawURLEncoding.EncodeToString(key))
			if err != nil {
				return false
			}
			if len(addr) != 43 {
				return false
			}
			_, err = base64.RawURLEncoding.DecodeString(addr)
			return err == nil
		},
		keyGen,
	))

	properties.Property("derivation is deterministic", prop.ForAll(
		func(key []byte) bool {
			owner := base64.RawURLEncoding.EncodeToString(key)
			first, err1 := FromOwner(owner)
			second, err2 := FromOwner(owner)
			return err1 == nil && err2 == nil && first == second
		},
		keyGen,
	))

	properties.Property("padded and unpadded owners derive the same address", prop.ForAll(
		func(key []byte) bool {
			fromPadded, err1 := FromOwner(base64.URLEncoding.EncodeToString(key))
			fromUnpadded, err2 := FromOwner(base64.RawURLEncoding.EncodeToString(key))
			return err1 == nil && err2 == nil && fromPadded == fromUnpadded
		},
		keyGen,
	))

	properties.TestingRun(t)
}
