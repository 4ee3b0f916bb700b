package domain

// RoleSuperadmin bypasses every permission check.
const RoleSuperadmin = "superadmin"

// Principal models the authenticated user together with the authorization
// attributes derived at login or profile refresh. It is owned by the session
// store; consumers read copies and never mutate it in place.
type Principal struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email,omitempty"`
	OrganizationID string   `json:"organization_id,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Permissions    []string `json:"permissions,omitempty"`
}

// HasRole reports whether the principal holds any of the given roles.
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// HasPermission reports whether the principal holds any of the given
// permissions. Superadmins pass every check regardless of the permission set.
func (p *Principal) HasPermission(permissions ...string) bool {
	if p == nil {
		return false
	}
	if p.HasRole(RoleSuperadmin) {
		return true
	}
	for _, want := range permissions {
		for _, have := range p.Permissions {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out to callers.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Roles = append([]string(nil), p.Roles...)
	clone.Permissions = append([]string(nil), p.Permissions...)
	return &clone
}
