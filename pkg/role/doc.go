// Package role turns the free-form role labels produced by identity providers,
// legacy user records and profile names into one canonical Role.
//
// Normalization is pure and total: every input maps to exactly one role and
// anything unrecognised maps to Patient, the least-privileged role. It never
// fails and never yields Administrator for unknown input.
//
//	role.Normalize("Médico")       // role.Professional
//	role.Normalize("SUPER-ADMIN")  // role.Administrator
//	role.Normalize("")             // role.Patient
//
// When a principal carries several candidate fields, Resolve takes them in
// precedence order:
//
//	r := role.Resolve(claims.Role, profile.Role, legacy.TipoUsuario)
package role
