// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HasherRoundTrip(t *testing.T) {
	h := Argon2Hasher{}

	digest, err := h.Hash("pass1234")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$"))

	valid, rehash, err := h.Verify("pass1234", &digest)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, rehash)

	valid, _, err = h.Verify("wrong", &digest)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyUnknownUserNeverMatches(t *testing.T) {
	valid, rehash, err := Argon2Hasher{}.Verify("dummy_password_for_timing_attack_prevention", nil)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, rehash)
}

func TestVerifyRejectsMalformedDigest(t *testing.T) {
	bad := "$bcrypt$whatever"
	_, _, err := Argon2Hasher{}.Verify("pass1234", &bad)
	assert.Error(t, err)
}

func TestSessionTokensAreUnique(t *testing.T) {
	a, err := GenerateSessionToken()
	require.NoError(t, err)
	b, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
