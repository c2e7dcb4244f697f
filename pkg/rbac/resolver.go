package rbac

import "slices"

// HasGroupAccess is the Level-1 gate.
func HasGroupAccess(set *PermissionSet, group Group) bool {
	return set.IsAdmin() || set.InGroup(group)
}

// HasPermission is the Level-2 gate. It denies whenever the group gate denies,
// even if the detailed grants contain the triple. Missing entries deny.
func HasPermission(set *PermissionSet, group Group, resource Resource, action Action) bool {
	if !HasGroupAccess(set, group) {
		return false
	}
	return set.IsAdmin() || set.Granted(Check{Group: group, Resource: resource, Action: action})
}

// Allows is HasPermission for a prepared Check.
func Allows(set *PermissionSet, c Check) bool {
	return HasPermission(set, c.Group, c.Resource, c.Action)
}

// HasAnyPermission reports whether at least one check passes. An empty list fails.
func HasAnyPermission(set *PermissionSet, checks ...Check) bool {
	for _, c := range checks {
		if Allows(set, c) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every check passes. An empty list passes.
func HasAllPermissions(set *PermissionSet, checks ...Check) bool {
	for _, c := range checks {
		if !Allows(set, c) {
			return false
		}
	}
	return true
}

// AccessibleGroups returns every group for administrators, otherwise the
// member groups. The result is sorted.
func AccessibleGroups(set *PermissionSet) []Group {
	if set.IsAdmin() {
		groups := Groups()
		slices.Sort(groups)
		return groups
	}
	return set.Groups()
}

// ResourceActions returns the actions allowed on resource inside group, sorted.
// Administrators get every action of the default vocabulary.
func ResourceActions(set *PermissionSet, group Group, resource Resource) []Action {
	if !HasGroupAccess(set, group) {
		return []Action{}
	}
	if set.IsAdmin() {
		return DefaultVocabulary().Actions()
	}

	out := make([]Action, 0)
	for c := range set.grants {
		if c.Group == group && c.Resource == resource {
			out = append(out, c.Action)
		}
	}
	slices.Sort(out)
	return out
}
