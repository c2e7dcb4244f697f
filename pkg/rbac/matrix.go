package rbac

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rbmarquez/doctorq/pkg/role"
)

// Matrix is the static role-based permission table: Role -> Resource -> Set<Action>.
// It is read-only once built and exposes no way to change it.
type Matrix interface {
	// PermittedActions returns the actions the role may perform on the resource.
	PermittedActions(r role.Role, resource Resource) []Action

	// HasPermission reports whether action is among PermittedActions.
	HasPermission(r role.Role, resource Resource, action Action) bool

	// Resources returns every resource the role may touch at all.
	Resources(r role.Role) []Resource

	// Roles returns the roles sorted by inheritance (base roles first).
	Roles() []role.Role
}

// matrix implements Matrix.
type matrix struct {
	// table holds flattened (direct and inherited) grants per role.
	// It is never written after NewMatrix returns.
	table       map[role.Role]map[Resource]map[Action]struct{}
	sortedRoles []role.Role
}

// NewMatrix loads role rows from source, validates them and precomputes the
// flattened table including inherited grants.
func NewMatrix(ctx context.Context, source MatrixSource) (Matrix, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	if roles == nil {
		roles = make(map[role.Role]RoleGrant)
	}

	if err := validateRoles(roles); err != nil {
		return nil, err
	}

	if err := validateRoleInheritance(roles); err != nil {
		return nil, err
	}

	table := make(map[role.Role]map[Resource]map[Action]struct{}, len(roles))
	for name := range roles {
		table[name] = collectGrants(name, roles, make(map[role.Role]bool), 0)
	}

	return &matrix{
		table:       table,
		sortedRoles: sortRolesByInheritance(roles),
	}, nil
}

var defaultMatrix = mustDefaultMatrix()

func mustDefaultMatrix() Matrix {
	m, err := NewMatrix(context.Background(), DefaultSource())
	if err != nil {
		panic(fmt.Sprintf("rbac: compiled-in matrix is invalid: %v", err))
	}
	return m
}

// DefaultMatrix returns the compiled-in matrix.
func DefaultMatrix() Matrix {
	return defaultMatrix
}

func (m *matrix) PermittedActions(r role.Role, resource Resource) []Action {
	actions := m.table[r][resource]
	out := make([]Action, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

func (m *matrix) HasPermission(r role.Role, resource Resource, action Action) bool {
	_, ok := m.table[r][resource][action]
	return ok
}

func (m *matrix) Resources(r role.Role) []Resource {
	out := make([]Resource, 0, len(m.table[r]))
	for res := range m.table[r] {
		out = append(out, res)
	}
	slices.Sort(out)
	return out
}

func (m *matrix) Roles() []role.Role {
	return slices.Clone(m.sortedRoles)
}

// MatrixSet converts a matrix row into a PermissionSet scoped to the role's
// home group. The result never carries the admin bypass.
func MatrixSet(m Matrix, r role.Role) *PermissionSet {
	if m == nil {
		return EmptySet()
	}

	group := HomeGroup(r)
	var grants []Check
	for _, res := range m.Resources(r) {
		for _, a := range m.PermittedActions(r, res) {
			grants = append(grants, Check{Group: group, Resource: res, Action: a})
		}
	}

	return NewPermissionSet(Snapshot{Groups: []Group{group}, Grants: grants})
}

// validateRoles rejects role names that are not canonical, both as rows and as
// inheritance targets.
func validateRoles(roles map[role.Role]RoleGrant) error {
	for name, grant := range roles {
		if !name.Valid() {
			return errors.Join(ErrInvalidRole, fmt.Errorf("unknown role %q", name))
		}
		for _, parent := range grant.Inherits {
			if !parent.Valid() {
				return errors.Join(ErrInvalidRole, fmt.Errorf("role %q inherits unknown role %q", name, parent))
			}
		}
	}
	return nil
}

// collectGrants recursively merges the grants of a role and its ancestors.
func collectGrants(name role.Role, roles map[role.Role]RoleGrant, visited map[role.Role]bool, depth int) map[Resource]map[Action]struct{} {
	out := make(map[Resource]map[Action]struct{})
	if depth > MaxInheritanceDepth || visited[name] {
		return out
	}
	visited[name] = true

	grant, exists := roles[name]
	if !exists {
		return out
	}

	for res, actions := range grant.Resources {
		for _, a := range actions {
			if out[res] == nil {
				out[res] = make(map[Action]struct{})
			}
			out[res][a] = struct{}{}
		}
	}

	for _, parent := range grant.Inherits {
		for res, actions := range collectGrants(parent, roles, visited, depth+1) {
			if out[res] == nil {
				out[res] = make(map[Action]struct{}, len(actions))
			}
			for a := range actions {
				out[res][a] = struct{}{}
			}
		}
	}

	return out
}

// sortRolesByInheritance orders roles by inheritance depth, ties by name.
func sortRolesByInheritance(roles map[role.Role]RoleGrant) []role.Role {
	depths := make(map[role.Role]int)
	visited := make(map[role.Role]bool)

	for name := range roles {
		if !visited[name] {
			calculateRoleDepth(name, roles, depths, visited, make(map[role.Role]bool))
		}
	}

	result := make([]role.Role, 0, len(roles))
	for name := range roles {
		result = append(result, name)
	}

	slices.SortFunc(result, func(a, b role.Role) int {
		return cmp.Or(cmp.Compare(depths[a], depths[b]), cmp.Compare(a, b))
	})

	return result
}

// calculateRoleDepth computes the inheritance depth of a role using DFS.
func calculateRoleDepth(name role.Role, roles map[role.Role]RoleGrant, depths map[role.Role]int, visited, inProcess map[role.Role]bool) int {
	if visited[name] {
		return depths[name]
	}
	if inProcess[name] {
		return 0
	}
	inProcess[name] = true
	defer func() { inProcess[name] = false }()

	maxDepth := 0
	for _, parent := range roles[name].Inherits {
		if depth := calculateRoleDepth(parent, roles, depths, visited, inProcess) + 1; depth > maxDepth {
			maxDepth = depth
		}
	}

	depths[name] = maxDepth
	visited[name] = true
	return maxDepth
}

// validateRoleInheritance rejects cycles and chains deeper than MaxInheritanceDepth.
func validateRoleInheritance(roles map[role.Role]RoleGrant) error {
	for name := range roles {
		if err := checkCircularInheritance(name, roles, []role.Role{name}); err != nil {
			return err
		}
	}

	depths := make(map[role.Role]int)
	visited := make(map[role.Role]bool)
	for name := range roles {
		if depth := calculateRoleDepth(name, roles, depths, visited, make(map[role.Role]bool)); depth > MaxInheritanceDepth {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
		}
	}

	return nil
}

// checkCircularInheritance performs DFS along the current path.
func checkCircularInheritance(name role.Role, roles map[role.Role]RoleGrant, path []role.Role) error {
	for _, parent := range roles[name].Inherits {
		if slices.Contains(path, parent) {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("circular inheritance detected: %s -> %s", name, parent))
		}
		if err := checkCircularInheritance(parent, roles, append(slices.Clone(path), parent)); err != nil {
			return err
		}
	}
	return nil
}
