package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecrypt(t *testing.T) {
	secret := `{"agency":"0001","account":"12345-6"}`
	sealed, err := Encrypt(secret, testKey)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "12345")

	again, err := Encrypt(secret, testKey)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "each call uses a fresh IV")

	plain, err := Decrypt(sealed, testKey)
	require.NoError(t, err)
	assert.Equal(t, secret, plain)
}

func TestDecryptRejectsBadInput(t *testing.T) {
	_, err := Decrypt("zz", testKey)
	assert.Error(t, err)

	_, err = Decrypt("00112233", testKey)
	assert.Error(t, err)

	_, err = Encrypt("x", []byte("short"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("secret", "nubank", "acc", "FIT1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint("secret", "nubank", "acc", "FIT1"))
	assert.NotEqual(t, a, Fingerprint("secret", "nubank", "acc", "FIT2"))
	assert.NotEqual(t, a, Fingerprint("other", "nubank", "acc", "FIT1"))
}
