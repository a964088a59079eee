package resettoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("user-1", "hash-a")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	require.NoError(t, signer.Verify("user-1", "hash-a", token))
}

func TestVerifyRejectsChangedPassword(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, _, err := signer.Generate("user-1", "hash-a")
	require.NoError(t, err)

	require.Error(t, signer.Verify("user-1", "hash-b", token))
}

func TestVerifyRejectsWrongUser(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, _, err := signer.Generate("user-1", "hash-a")
	require.NoError(t, err)

	require.Error(t, signer.Verify("user-2", "hash-a", token))
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := &Signer{secret: []byte("secret"), ttl: -time.Minute}

	token, _, err := signer.Generate("user-1", "hash-a")
	require.NoError(t, err)

	require.Error(t, signer.Verify("user-1", "hash-a", token))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	require.Error(t, signer.Verify("user-1", "hash-a", "garbage"))
	require.Error(t, signer.Verify("user-1", "hash-a", "notanumber.sig"))
}

func TestUIDRoundTrip(t *testing.T) {
	uid := EncodeUID("user-1")
	decoded, err := DecodeUID(uid)
	require.NoError(t, err)
	require.Equal(t, "user-1", decoded)

	_, err = DecodeUID("%%%")
	require.Error(t, err)
}
