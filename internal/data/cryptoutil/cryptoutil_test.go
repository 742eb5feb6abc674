package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMSealer_SealOpen(t *testing.T) {
	s, err := NewAESGCMSealer(testKey(), "session")
	require.NoError(t, err)

	sealed, err := s.Seal([]byte(`{"username":"admin","role":"admin"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1."))
	assert.NotContains(t, sealed, "admin")

	pt, err := s.Open(sealed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"admin","role":"admin"}`, string(pt))
}

func TestAESGCMSealer_NoncesDiffer(t *testing.T) {
	s, err := NewAESGCMSealer(testKey(), "session")
	require.NoError(t, err)
	a, err := s.Seal([]byte("x"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("x"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCMSealer_RejectsTamperingAndMismatch(t *testing.T) {
	s, err := NewAESGCMSealer(testKey(), "session")
	require.NoError(t, err)
	sealed, err := s.Seal([]byte("payload"))
	require.NoError(t, err)

	i := len("v1.") + 8
	repl := byte('A')
	if sealed[i] == repl {
		repl = 'B'
	}
	tampered := sealed[:i] + string(repl) + sealed[i+1:]
	_, err = s.Open(tampered)
	require.ErrorIs(t, err, ErrMalformed)

	other, err := NewAESGCMSealer(DeriveKey("another key"), "session")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.ErrorIs(t, err, ErrMalformed)

	otherPurpose, err := NewAESGCMSealer(testKey(), "csrf")
	require.NoError(t, err)
	_, err = otherPurpose.Open(sealed)
	require.ErrorIs(t, err, ErrMalformed)

	for _, junk := range []string{"", "v1.", "v1.!!!", "v2.abcd", "plain.eA"} {
		_, err = s.Open(junk)
		require.ErrorIs(t, err, ErrMalformed, junk)
	}
}

func TestAESGCMSealer_InvalidKey(t *testing.T) {
	_, err := NewAESGCMSealer([]byte("short"), "session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 32 bytes")

	_, err = NewAESGCMSealer(make([]byte, 64), "session")
	require.Error(t, err)
}

func TestPlainSealer(t *testing.T) {
	var s PlainSealer
	sealed, err := s.Seal([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "plain."))

	pt, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(pt))

	_, err = s.Open("v1.abc")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDeriveKey(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	k := DeriveKey(hexKey)
	require.Len(t, k, 32)
	assert.Equal(t, byte(0xab), k[0])

	k2 := DeriveKey("passphrase")
	require.Len(t, k2, 32)
	assert.Equal(t, k2, DeriveKey("passphrase"))
	assert.NotEqual(t, k2, DeriveKey("passphrase2"))
}
