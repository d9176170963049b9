package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoles(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  []string
	}{
		{name: "nil falls back to USER", roles: nil, want: []string{RoleUser}},
		{name: "blank entries dropped", roles: []string{" ", "", "ADMIN"}, want: []string{RoleAdmin}},
		{name: "only blanks falls back to USER", roles: []string{"  ", "\t"}, want: []string{RoleUser}},
		{name: "entries trimmed", roles: []string{" MODERATOR ", "USER"}, want: []string{RoleModerator, RoleUser}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRoles(tt.roles))
		})
	}
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, IsKnownRole(RoleUser))
	assert.True(t, IsKnownRole(RoleModerator))
	assert.True(t, IsKnownRole(RoleAdmin))
	assert.False(t, IsKnownRole("admin"))
	assert.False(t, IsKnownRole(""))
}
