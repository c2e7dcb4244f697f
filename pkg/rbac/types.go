package rbac

import (
	"cmp"
	"slices"

	"github.com/rbmarquez/doctorq/pkg/role"
)

// MaxInheritanceDepth is the maximum allowed depth of role inheritance
// in a permission matrix.
const MaxInheritanceDepth = 10

// Group is a coarse functional area a principal may enter (Level-1 gate).
type Group string

const (
	GroupAdmin        Group = "admin"
	GroupClinic       Group = "clinic"
	GroupProfessional Group = "professional"
	GroupSupplier     Group = "supplier"
	GroupPatient      Group = "patient"
)

// Groups returns the closed set of groups.
func Groups() []Group {
	return []Group{GroupAdmin, GroupClinic, GroupProfessional, GroupSupplier, GroupPatient}
}

// Valid reports whether g belongs to the closed group set.
func (g Group) Valid() bool {
	return slices.Contains(Groups(), g)
}

// ParseGroup accepts only known group names.
func ParseGroup(s string) (Group, bool) {
	g := Group(s)
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// HomeGroup is the group a role naturally belongs to.
func HomeGroup(r role.Role) Group {
	switch r {
	case role.Administrator:
		return GroupAdmin
	case role.ClinicManager:
		return GroupClinic
	case role.Professional:
		return GroupProfessional
	case role.Supplier:
		return GroupSupplier
	default:
		return GroupPatient
	}
}

// Resource is a named domain entity within a group.
type Resource string

const (
	ResourceAppointments   Resource = "appointments"
	ResourcePatients       Resource = "patients"
	ResourceProfessionals  Resource = "professionals"
	ResourceMedicalRecords Resource = "medical_records"
	ResourceSchedule       Resource = "schedule"
	ResourceFinancials     Resource = "financials"
	ResourceUsers          Resource = "users"
	ResourceProfile        Resource = "profile"
	ResourceProducts       Resource = "products"
	ResourceOrders         Resource = "orders"
	ResourceMarketplace    Resource = "marketplace"
	ResourceReports        Resource = "reports"
	ResourceSettings       Resource = "settings"
	ResourceClinics        Resource = "clinics"
	ResourceSuppliers      Resource = "suppliers"
)

// Action is an operation performed on a resource.
type Action string

const (
	ActionView          Action = "view"
	ActionCreate        Action = "create"
	ActionEdit          Action = "edit"
	ActionDelete        Action = "delete"
	ActionViewAll       Action = "view_all"
	ActionViewOwn       Action = "view_own"
	ActionCancel        Action = "cancel"
	ActionExportReports Action = "export_reports"
)

// Check is a single (group, resource, action) triple.
type Check struct {
	Group    Group    `json:"group" yaml:"group"`
	Resource Resource `json:"resource" yaml:"resource"`
	Action   Action   `json:"action" yaml:"action"`
}

// NewCheck is shorthand for building a Check from string literals.
func NewCheck(group Group, resource Resource, action Action) Check {
	return Check{Group: group, Resource: resource, Action: action}
}

func (c Check) String() string {
	return string(c.Group) + ":" + string(c.Resource) + ":" + string(c.Action)
}

func compareChecks(a, b Check) int {
	return cmp.Or(
		cmp.Compare(a.Group, b.Group),
		cmp.Compare(a.Resource, b.Resource),
		cmp.Compare(a.Action, b.Action),
	)
}
