package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWellFormedUsername(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"ascii", "alice", true},
		{"multibyte", "Siti Nurhaliza binti Tarudin", true},
		{"max runes", strings.Repeat("é", MaxUsernameLength), true},
		{"too many runes", strings.Repeat("a", MaxUsernameLength+1), false},
		{"invalid utf-8", "al\xffice", false},
		{"truncated sequence", "caf\xc3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WellFormedUsername(tt.in))
		})
	}
}

func TestIdentity_Valid(t *testing.T) {
	assert.True(t, Identity{Username: "alice", Role: RoleUser}.Valid())
	assert.False(t, Identity{Username: "  ", Role: RoleUser}.Valid())
	assert.False(t, Identity{Username: "alice", Role: "owner"}.Valid())
	assert.False(t, Identity{Username: "al\xffice", Role: RoleUser}.Valid())
}
