package permission_test

import (
	"errors"
	"modflow/backend/internal/models"
	"modflow/backend/internal/permission"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize_TierMembership(t *testing.T) {
	tests := []struct {
		role models.Role
		tier permission.Tier
		want bool
	}{
		{models.RoleMember, permission.TierModerate, false},
		{models.RoleModerator, permission.TierModerate, true},
		{models.RoleAdmin, permission.TierModerate, true},
		{models.RoleOwner, permission.TierModerate, true},

		{models.RoleMember, permission.TierAdmin, false},
		{models.RoleModerator, permission.TierAdmin, false},
		{models.RoleAdmin, permission.TierAdmin, true},
		{models.RoleOwner, permission.TierAdmin, true},

		{models.RoleModerator, permission.TierOwner, false},
		{models.RoleAdmin, permission.TierOwner, false},
		{models.RoleOwner, permission.TierOwner, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, permission.Allowed(tt.role, tt.tier))

			err := permission.Authorize(tt.role, tt.tier)
			if tt.want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, permission.ErrForbidden)
			}
		})
	}
}

func TestAuthorize_UnknownRoleOrTier(t *testing.T) {
	assert.False(t, permission.Allowed("MOD", permission.TierModerate), "legacy role names are not accepted")
	assert.False(t, permission.Allowed("", permission.TierModerate))
	assert.False(t, permission.Allowed(models.RoleOwner, permission.Tier("ROOT")))
}

func TestDeniedError_ExplainsRequiredTier(t *testing.T) {
	err := permission.Authorize(models.RoleMember, permission.TierModerate)

	var denied *permission.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, models.RoleMember, denied.Role)
	assert.Equal(t, permission.TierModerate, denied.Tier)
	assert.Equal(t, "Insufficient permissions. Moderator access required.", err.Error())

	err = permission.Authorize(models.RoleModerator, permission.TierOwner)
	assert.Equal(t, "Insufficient permissions. Owner access required.", err.Error())
}
