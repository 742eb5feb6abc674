package sessioncodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/programme-portal/internal/data/cryptoutil"
	domainauth "github.com/target/programme-portal/internal/domain/auth"
)

func TestCodec_PlainJSONRoundTrip(t *testing.T) {
	c := New(nil)
	raw, err := c.Encode(domainauth.Identity{Username: "admin", Role: domainauth.RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"admin","role":"admin"}`, raw)

	rec, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Identity{Username: "admin", Role: domainauth.RoleAdmin}, rec)
}

func TestCodec_SealedRoundTrip(t *testing.T) {
	sealer, err := cryptoutil.NewAESGCMSealer(cryptoutil.DeriveKey("k"), "session")
	require.NoError(t, err)
	c := New(sealer)

	raw, err := c.Encode(domainauth.Identity{Username: "superadmin", Role: domainauth.RoleSuperAdmin})
	require.NoError(t, err)
	assert.NotContains(t, raw, "superadmin")

	rec, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleSuperAdmin, rec.Role)

	_, err = New(nil).Decode(raw)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestCodec_DecodeCorrupt(t *testing.T) {
	c := New(nil)
	cases := map[string]string{
		"empty":          "",
		"not json":       "{nope",
		"missing role":   `{"username":"alice"}`,
		"unknown role":   `{"username":"alice","role":"owner"}`,
		"blank username": `{"username":"  ","role":"user"}`,
		"wrong types":    `{"username":1,"role":true}`,
		"array":          `[]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(raw)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestCodec_EncodeRejectsInvalid(t *testing.T) {
	_, err := New(nil).Encode(domainauth.Identity{Username: "", Role: domainauth.RoleUser})
	require.Error(t, err)
	_, err = New(cryptoutil.PlainSealer{}).Encode(domainauth.Identity{Username: "x", Role: "owner"})
	require.Error(t, err)
	// JSON would silently rewrite the invalid byte, so the record would not round-trip
	_, err = New(nil).Encode(domainauth.Identity{Username: "al\xffice", Role: domainauth.RoleUser})
	require.Error(t, err)
}
