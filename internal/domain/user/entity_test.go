package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("operator")
	require.NoError(t, err)
	assert.Equal(t, RoleOperator, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestActor_CanActOn(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		owner string
		want  bool
	}{
		{"本人", Actor{UserID: "u1", Role: RoleUser}, "u1", true},
		{"他人", Actor{UserID: "u2", Role: RoleUser}, "u1", false},
		{"オペレーター", Actor{UserID: "op", Role: RoleOperator}, "u1", true},
		{"管理者", Actor{UserID: "ad", Role: RoleAdmin}, "u1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.CanActOn(tt.owner))
		})
	}
}
