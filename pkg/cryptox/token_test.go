package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // base64url of 32 bytes, no padding

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-opaque-token")
	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("some-opaque-token"), "fingerprint is deterministic")
	require.NotEqual(t, fp, FingerprintToken("other-token"))
}
