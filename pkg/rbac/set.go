package rbac

import "slices"

// Snapshot is the plain, serialisable form of a PermissionSet.
type Snapshot struct {
	Groups      []Group `json:"groups"`
	Grants      []Check `json:"grants"`
	IsAdmin     bool    `json:"is_admin"`
	ProfileID   string  `json:"profile_id,omitempty"`
	ProfileName string  `json:"profile_name,omitempty"`
}

// PermissionSet is the per-user permission structure resolved by the
// permission authority. It is immutable: a change in permissions is expressed by
// building a new set and replacing the old one as a whole.
//
// A nil *PermissionSet is valid and behaves like EmptySet.
type PermissionSet struct {
	groups      map[Group]struct{}
	grants      map[Check]struct{}
	admin       bool
	profileID   string
	profileName string
}

var emptySet = &PermissionSet{
	groups: map[Group]struct{}{},
	grants: map[Check]struct{}{},
}

// EmptySet returns the deny-everything set: no groups, no grants, not admin.
func EmptySet() *PermissionSet {
	return emptySet
}

// NewPermissionSet builds an immutable set from a snapshot. The snapshot is copied.
// Only granted triples are stored; anything absent resolves to deny.
func NewPermissionSet(s Snapshot) *PermissionSet {
	set := &PermissionSet{
		groups:      make(map[Group]struct{}, len(s.Groups)),
		grants:      make(map[Check]struct{}, len(s.Grants)),
		admin:       s.IsAdmin,
		profileID:   s.ProfileID,
		profileName: s.ProfileName,
	}
	for _, g := range s.Groups {
		set.groups[g] = struct{}{}
	}
	for _, c := range s.Grants {
		set.grants[c] = struct{}{}
	}
	return set
}

// IsAdmin reports whether the administrator bypass applies.
func (s *PermissionSet) IsAdmin() bool {
	return s != nil && s.admin
}

func (s *PermissionSet) ProfileID() string {
	if s == nil {
		return ""
	}
	return s.profileID
}

func (s *PermissionSet) ProfileName() string {
	if s == nil {
		return ""
	}
	return s.profileName
}

// InGroup reports raw group membership, without the admin bypass.
func (s *PermissionSet) InGroup(g Group) bool {
	if s == nil {
		return false
	}
	_, ok := s.groups[g]
	return ok
}

// Granted reports whether the triple is present in the detailed grants.
// It ignores group membership and the admin bypass; use HasPermission for decisions.
func (s *PermissionSet) Granted(c Check) bool {
	if s == nil {
		return false
	}
	_, ok := s.grants[c]
	return ok
}

// Groups returns the member groups, sorted.
func (s *PermissionSet) Groups() []Group {
	if s == nil {
		return []Group{}
	}
	out := make([]Group, 0, len(s.groups))
	for g := range s.groups {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

// Grants returns the granted triples, sorted.
func (s *PermissionSet) Grants() []Check {
	if s == nil {
		return []Check{}
	}
	out := make([]Check, 0, len(s.grants))
	for c := range s.grants {
		out = append(out, c)
	}
	slices.SortFunc(out, compareChecks)
	return out
}

// IsEmpty reports whether the set grants nothing at all.
func (s *PermissionSet) IsEmpty() bool {
	return s == nil || (!s.admin && len(s.groups) == 0 && len(s.grants) == 0)
}

// Snapshot returns a copy of the set in plain form.
func (s *PermissionSet) Snapshot() Snapshot {
	return Snapshot{
		Groups:      s.Groups(),
		Grants:      s.Grants(),
		IsAdmin:     s.IsAdmin(),
		ProfileID:   s.ProfileID(),
		ProfileName: s.ProfileName(),
	}
}
