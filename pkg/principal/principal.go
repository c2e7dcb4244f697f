package principal

import (
	"strings"

	"github.com/rbmarquez/doctorq/pkg/role"
)

// Principal is the authenticated caller as kept in the session.
// Permission sets are never stored here; they are fetched and cached per user.
type Principal struct {
	UserID    string    `json:"user_id"`
	Role      role.Role `json:"role"`
	ProfileID string    `json:"profile_id,omitempty"`
}

// Anonymous reports whether p has no user. Anonymous principals are denied everything.
func (p Principal) Anonymous() bool {
	return strings.TrimSpace(p.UserID) == ""
}

// Identity is what the identity provider hands over after authentication.
// Role strings are raw provider values in any language or casing.
type Identity struct {
	ProviderID     string
	Email          string
	Name           string
	RawRole        string
	ProfileRole    string
	LegacyUserType string
}

// RoleSources lists the identity's role strings in precedence order:
// the provider role claim, then the profile role, then the legacy user type.
func RoleSources(id Identity) []string {
	return []string{id.RawRole, id.ProfileRole, id.LegacyUserType}
}

// FromIdentity builds the session principal for an authenticated user.
// The role is resolved from the identity's role sources; unknown values become role.Default.
func FromIdentity(userID, profileID string, id Identity) Principal {
	return Principal{
		UserID:    strings.TrimSpace(userID),
		Role:      role.Resolve(RoleSources(id)...),
		ProfileID: strings.TrimSpace(profileID),
	}
}
