package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbmarquez/doctorq/pkg/rbac"
)

func clinicCreateSet() *rbac.PermissionSet {
	return rbac.NewPermissionSet(rbac.Snapshot{
		Groups: []rbac.Group{rbac.GroupClinic},
		Grants: []rbac.Check{
			rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate),
		},
	})
}

func TestHasPermission_ClinicScenario(t *testing.T) {
	t.Parallel()

	set := clinicCreateSet()

	assert.True(t, rbac.HasPermission(set, "clinic", "appointments", "create"))
	assert.False(t, rbac.HasPermission(set, "clinic", "appointments", "delete"))
	assert.False(t, rbac.HasPermission(set, "admin", "users", "view"))
}

func TestHasPermission_AdminBypass(t *testing.T) {
	t.Parallel()

	set := rbac.NewPermissionSet(rbac.Snapshot{IsAdmin: true})

	assert.True(t, rbac.HasPermission(set, "admin", "users", "delete"))
	for _, g := range rbac.Groups() {
		assert.True(t, rbac.HasGroupAccess(set, g))
		assert.True(t, rbac.HasPermission(set, g, "anything", "whatever"))
	}
	assert.True(t, rbac.HasPermission(set, "not-a-group", "", ""))
}

func TestHasPermission_GroupGateWins(t *testing.T) {
	t.Parallel()

	// Detailed grants for a group the user is not a member of must not count.
	set := rbac.NewPermissionSet(rbac.Snapshot{
		Groups: []rbac.Group{rbac.GroupPatient},
		Grants: []rbac.Check{
			rbac.NewCheck(rbac.GroupAdmin, rbac.ResourceUsers, rbac.ActionDelete),
			rbac.NewCheck(rbac.GroupPatient, rbac.ResourceAppointments, rbac.ActionViewOwn),
		},
	})

	assert.False(t, rbac.HasGroupAccess(set, rbac.GroupAdmin))
	assert.False(t, rbac.HasPermission(set, rbac.GroupAdmin, rbac.ResourceUsers, rbac.ActionDelete))
	assert.True(t, set.Granted(rbac.NewCheck(rbac.GroupAdmin, rbac.ResourceUsers, rbac.ActionDelete)))
	assert.True(t, rbac.HasPermission(set, rbac.GroupPatient, rbac.ResourceAppointments, rbac.ActionViewOwn))
}

func TestHasPermission_MissingKeysDeny(t *testing.T) {
	t.Parallel()

	sets := map[string]*rbac.PermissionSet{
		"nil":   nil,
		"empty": rbac.EmptySet(),
		"group only": rbac.NewPermissionSet(rbac.Snapshot{
			Groups: []rbac.Group{rbac.GroupClinic},
		}),
	}

	for name, set := range sets {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, rbac.HasPermission(set, rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionView))
				assert.False(t, rbac.HasPermission(set, "", "", ""))
				assert.Empty(t, rbac.ResourceActions(set, rbac.GroupClinic, rbac.ResourceAppointments))
			})
		})
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	t.Parallel()

	set := clinicCreateSet()
	allowed := rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate)
	denied := rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionDelete)

	assert.True(t, rbac.HasAnyPermission(set, denied, allowed))
	assert.False(t, rbac.HasAnyPermission(set, denied))
	assert.False(t, rbac.HasAnyPermission(set))

	assert.True(t, rbac.HasAllPermissions(set, allowed))
	assert.False(t, rbac.HasAllPermissions(set, allowed, denied))
	assert.True(t, rbac.HasAllPermissions(set))
}

func TestAccessibleGroups(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []rbac.Group{rbac.GroupClinic}, rbac.AccessibleGroups(clinicCreateSet()))
	assert.Empty(t, rbac.AccessibleGroups(rbac.EmptySet()))
	assert.Empty(t, rbac.AccessibleGroups(nil))
	assert.ElementsMatch(t, rbac.Groups(), rbac.AccessibleGroups(rbac.NewPermissionSet(rbac.Snapshot{IsAdmin: true})))
}

func TestResourceActions(t *testing.T) {
	t.Parallel()

	set := rbac.NewPermissionSet(rbac.Snapshot{
		Groups: []rbac.Group{rbac.GroupClinic},
		Grants: []rbac.Check{
			rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionView),
			rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionCreate),
			rbac.NewCheck(rbac.GroupClinic, rbac.ResourcePatients, rbac.ActionView),
			rbac.NewCheck(rbac.GroupSupplier, rbac.ResourceAppointments, rbac.ActionDelete),
		},
	})

	assert.Equal(t, []rbac.Action{rbac.ActionCreate, rbac.ActionView},
		rbac.ResourceActions(set, rbac.GroupClinic, rbac.ResourceAppointments))
	assert.Empty(t, rbac.ResourceActions(set, rbac.GroupSupplier, rbac.ResourceAppointments))

	admin := rbac.NewPermissionSet(rbac.Snapshot{IsAdmin: true})
	assert.Equal(t, rbac.DefaultVocabulary().Actions(), rbac.ResourceActions(admin, rbac.GroupAdmin, rbac.ResourceUsers))
}

func TestPermissionSet_Immutable(t *testing.T) {
	t.Parallel()

	groups := []rbac.Group{rbac.GroupClinic}
	grants := []rbac.Check{rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionView)}
	set := rbac.NewPermissionSet(rbac.Snapshot{Groups: groups, Grants: grants})

	groups[0] = rbac.GroupAdmin
	grants[0].Action = rbac.ActionDelete

	assert.True(t, set.InGroup(rbac.GroupClinic))
	assert.False(t, set.InGroup(rbac.GroupAdmin))
	assert.False(t, rbac.HasPermission(set, rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionDelete))

	out := set.Groups()
	out[0] = rbac.GroupAdmin
	assert.Equal(t, []rbac.Group{rbac.GroupClinic}, set.Groups())
}

func TestPermissionSet_Snapshot(t *testing.T) {
	t.Parallel()

	in := rbac.Snapshot{
		Groups: []rbac.Group{rbac.GroupSupplier, rbac.GroupClinic},
		Grants: []rbac.Check{
			rbac.NewCheck(rbac.GroupSupplier, rbac.ResourceProducts, rbac.ActionEdit),
			rbac.NewCheck(rbac.GroupClinic, rbac.ResourceAppointments, rbac.ActionView),
		},
		ProfileID:   "42",
		ProfileName: "Recepção",
	}

	out := rbac.NewPermissionSet(in).Snapshot()
	assert.Equal(t, []rbac.Group{rbac.GroupClinic, rbac.GroupSupplier}, out.Groups)
	assert.Equal(t, []rbac.Check{in.Grants[1], in.Grants[0]}, out.Grants)
	assert.Equal(t, "42", out.ProfileID)
	assert.Equal(t, "Recepção", out.ProfileName)
	assert.False(t, out.IsAdmin)

	assert.True(t, rbac.EmptySet().IsEmpty())
	assert.False(t, rbac.NewPermissionSet(rbac.Snapshot{IsAdmin: true}).IsEmpty())
}

func TestPermissionSetContext(t *testing.T) {
	t.Parallel()

	_, ok := rbac.PermissionSetFromContext(context.Background())
	assert.False(t, ok)

	set := clinicCreateSet()
	got, ok := rbac.PermissionSetFromContext(rbac.WithPermissionSet(context.Background(), set))
	require.True(t, ok)
	assert.Same(t, set, got)

	_, ok = rbac.PermissionSetFromContext(rbac.WithPermissionSet(context.Background(), nil))
	assert.False(t, ok)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	g, ok := rbac.ParseGroup("clinic")
	assert.True(t, ok)
	assert.Equal(t, rbac.GroupClinic, g)

	_, ok = rbac.ParseGroup("root")
	assert.False(t, ok)
}

func TestVocabulary(t *testing.T) {
	t.Parallel()

	v := rbac.DefaultVocabulary()
	assert.True(t, v.HasResource(rbac.ResourceAppointments))
	assert.False(t, v.HasResource("spaceships"))
	assert.True(t, v.HasAction(rbac.ActionExportReports))

	ext := v.Extend([]rbac.Resource{"spaceships"}, []rbac.Action{"launch"})
	assert.True(t, ext.HasResource("spaceships"))
	assert.True(t, ext.HasAction("launch"))
	assert.False(t, v.HasResource("spaceships"), "extend returns a new vocabulary")
}
