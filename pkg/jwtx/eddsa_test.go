package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	require.NoError(t, err)

	now := time.Now().UTC()
	claims := NewAccessClaims("user-1", "alice@example.com", "expense-tracker", 15*time.Minute, now)

	token, err := kp.Sign(claims)
	require.NoError(t, err)

	got, err := kp.Verify(token, "expense-tracker")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice@example.com", got.Email)
	require.NotEmpty(t, got.ID, "jti should be populated")
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	t.Parallel()

	kp1, err := GenerateKeypair()
	require.NoError(t, err)
	kp2, err := GenerateKeypair()
	require.NoError(t, err)

	token, err := kp1.Sign(NewAccessClaims("u", "a@b.c", "iss", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = kp2.Verify(token, "iss")
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	token, err := kp.Sign(NewAccessClaims("u", "a@b.c", "iss", time.Minute, past))
	require.NoError(t, err)

	_, err = kp.Verify(token, "iss")
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsMalformedAndIssuer(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	require.NoError(t, err)

	_, err = kp.Verify("garbage", "iss")
	require.ErrorIs(t, err, ErrMalformed)

	token, err := kp.Sign(NewAccessClaims("u", "a@b.c", "someone-else", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = kp.Verify(token, "iss")
	require.ErrorIs(t, err, ErrIssuer)
}

func TestPEMRoundTrip(t *testing.T) {
	t.Parallel()

	kp, err := GenerateKeypair()
	require.NoError(t, err)

	pemBytes, err := kp.MarshalPEM()
	require.NoError(t, err)

	loaded, err := LoadKeypair(pemBytes)
	require.NoError(t, err)

	token, err := kp.Sign(NewAccessClaims("u", "a@b.c", "iss", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = loaded.Verify(token, "iss")
	require.NoError(t, err, "key loaded from PEM verifies tokens from the original key")
}
