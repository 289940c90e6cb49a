// Package permission decides whether an actor's role reaches the privilege tier
// an operation requires. The role set and tier membership are fixed.
package permission

import (
	"errors"
	"fmt"
	"modflow/backend/internal/models"
)

// Tier is the minimum privilege an operation requires.
type Tier string

const (
	TierModerate Tier = "MODERATE"
	TierAdmin    Tier = "ADMIN"
	TierOwner    Tier = "OWNER"
)

var tierRoles = map[Tier][]models.Role{
	TierModerate: {models.RoleModerator, models.RoleAdmin, models.RoleOwner},
	TierAdmin:    {models.RoleAdmin, models.RoleOwner},
	TierOwner:    {models.RoleOwner},
}

var tierNames = map[Tier]string{
	TierModerate: "Moderator",
	TierAdmin:    "Admin",
	TierOwner:    "Owner",
}

// ErrForbidden is matched by every denial returned from Authorize.
var ErrForbidden = errors.New("forbidden")

// DeniedError reports which role was refused and which tier it needed.
type DeniedError struct {
	Role models.Role
	Tier Tier
}

func (e *DeniedError) Error() string {
	name, ok := tierNames[e.Tier]
	if !ok {
		return fmt.Sprintf("Insufficient permissions. Unknown tier %q.", e.Tier)
	}
	return fmt.Sprintf("Insufficient permissions. %s access required.", name)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrForbidden
}

// Allowed reports whether role belongs to tier. Unknown roles and tiers are never allowed.
func Allowed(role models.Role, tier Tier) bool {
	for _, r := range tierRoles[tier] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns a *DeniedError when role does not belong to tier.
func Authorize(role models.Role, tier Tier) error {
	if Allowed(role, tier) {
		return nil
	}
	return &DeniedError{Role: role, Tier: tier}
}
