package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	plaintexts := []string{
		"",
		"a",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature",
		strings.Repeat("x", 4096),
	}

	for _, pt := range plaintexts {
		ct, err := c.Encrypt(pt)
		require.NoError(t, err)
		require.NotEqual(t, pt, ct)

		got, err := c.Decrypt(ct)
		require.NoError(t, err)
		require.Equal(t, pt, got)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	first, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestDecryptMalformed(t *testing.T) {
	c, err := New(testKey())
	require.NoError(t, err)

	for _, bad := range []string{
		"",
		"not base64 at all!!!",
		"aGVsbG8=", // valid base64, too short for a nonce
		"aGVsbG8gd29ybGQgdGhpcyBpcyBub3QgYSBjaXBoZXJ0ZXh0",
	} {
		_, err := c.Decrypt(bad)
		require.ErrorIs(t, err, ErrCiphertextInvalid, "input %q", bad)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	c1, err := New(testKey())
	require.NoError(t, err)
	c2, err := New([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	ct, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(ct)
	require.ErrorIs(t, err, ErrCiphertextInvalid)
}

func TestNewRejectsBadKey(t *testing.T) {
	_, err := New([]byte("short"))
	require.Error(t, err)
}
