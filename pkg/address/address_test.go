package address

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOwner(t *testing.T) {
	key := []byte("some-owner-public-key")
	owner := base64.RawURLEncoding.EncodeToString(key)

	addr, err := FromOwner(owner)
	require.NoError(t, err)

	sum := sha256.Sum256(key)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), addr)
}

func TestFromOwnerAcceptsPadding(t *testing.T) {
	key := []byte("key")
	padded := base64.URLEncoding.EncodeToString(key)
	unpadded := base64.RawURLEncoding.EncodeToString(key)
	require.NotEqual(t, padded, unpadded)

	fromPadded, err := FromOwner(padded)
	require.NoError(t, err)
	fromUnpadded, err := FromOwner(unpadded)
	require.NoError(t, err)
	assert.Equal(t, fromUnpadded, fromPadded)
}

func TestFromOwnerRejectsInvalidEncoding(t *testing.T) {
	tests := []string{
		"!!!",
		"abc$def",
		"spaces are invalid",
		"standard+base64/chars",
	}
	for _, owner := range tests {
		_, err := FromOwner(owner)
		assert.Error(t, err, "owner %q", owner)
	}
}

func TestHash(t *testing.T) {
	sum := sha256.Sum256([]byte("data"))
	assert.Equal(t, sum[:], Hash([]byte("data")))
	assert.Len(t, Hash(nil), sha256.Size)
}
