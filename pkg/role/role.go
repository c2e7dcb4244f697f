package role

// Role is the canonical classification of a principal.
type Role string

const (
	Administrator Role = "administrator"
	ClinicManager Role = "clinic_manager"
	Professional  Role = "professional"
	Supplier      Role = "supplier"
	Patient       Role = "patient"
)

// Default is the role assigned to any input that does not match an alias.
// It is always the least-privileged role.
const Default = Patient

// All returns every canonical role ordered by precedence, most privileged first.
func All() []Role {
	return []Role{Administrator, ClinicManager, Professional, Supplier, Patient}
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case Administrator, ClinicManager, Professional, Supplier, Patient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Parse accepts only canonical role names. It is meant for values the system
// produced itself (tokens, configuration); raw identity input goes through Normalize.
func Parse(s string) (Role, bool) {
	r := Role(s)
	if !r.Valid() {
		return "", false
	}
	return r, true
}
