// Package rbac is the permission resolution core: the static role matrix, the
// per-user PermissionSet and the pure resolver functions that turn a set and a
// (group, resource, action) triple into allow or deny.
//
// Access is decided in two levels. The group gate (Level 1) admits a principal
// into a functional area such as "clinic" or "supplier". The permission gate
// (Level 2) then checks the detailed grant for a resource and action inside that
// group. A grant inside a group the principal does not belong to never counts.
// Administrators bypass both levels unconditionally.
//
// # Permission sets
//
// A PermissionSet is produced by the permission authority (see package authority)
// and never changes after construction:
//
//	set := rbac.NewPermissionSet(rbac.Snapshot{
//	    Groups: []rbac.Group{rbac.GroupClinic},
//	    Grants: []rbac.Check{
//	        rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate),
//	    },
//	})
//
//	rbac.HasPermission(set, rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate) // true
//	rbac.HasPermission(set, rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionDelete) // false
//	rbac.HasPermission(set, rbac.GroupAdmin, rbac.ResourceUsers, rbac.ActionView)           // false
//
// A nil set is valid and denies everything. There are no priorities or deny
// rules: each triple is a single boolean and absence means deny.
//
// # Matrix
//
// The Matrix is a compiled-in Role -> Resource -> Set<Action> table with role
// inheritance flattened at build time. It serves quick, role-shaped decisions
// before a user's set is available and deployments that have no per-user data.
// It is never consulted once a fetched set exists.
//
//	m := rbac.DefaultMatrix()
//	m.HasPermission(role.Professional, rbac.ResourcePatients, rbac.ActionEdit) // true
//
// Custom tables can be loaded from YAML with NewYAMLSource or from memory with
// NewInMemSource.
package rbac
