package devauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
)

func TestVerifier_AcceptsAnyNonEmptyPair(t *testing.T) {
	v := NewVerifier(Config{})
	assert.False(t, v.Verifies())

	for _, c := range []domainauth.Credentials{
		{Username: "alice", Secret: "pw"},
		{Username: "admin", Secret: "x"},
		{Username: "superadmin", Secret: "anything at all"},
	} {
		require.NoError(t, v.Verify(context.Background(), c))
	}
}

func TestVerifier_RejectsEmptyFields(t *testing.T) {
	v := NewVerifier(Config{})
	for _, c := range []domainauth.Credentials{
		{Username: "", Secret: "pw"},
		{Username: "alice", Secret: ""},
		{Username: " ", Secret: "\t"},
		{},
	} {
		require.ErrorIs(t, v.Verify(context.Background(), c), domainauth.ErrCredentialsRejected)
	}
}

func TestVerifier_SharedSecret(t *testing.T) {
	v := NewVerifier(Config{SharedSecret: "demo"})
	assert.True(t, v.Verifies())
	require.NoError(t, v.Verify(context.Background(), domainauth.Credentials{Username: "alice", Secret: "demo"}))
	require.ErrorIs(t,
		v.Verify(context.Background(), domainauth.Credentials{Username: "alice", Secret: "nope"}),
		domainauth.ErrCredentialsRejected)
}
