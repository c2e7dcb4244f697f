package role

import "fmt"

// aliasTable lists the raw spellings accepted for each role, in precedence order.
// Entries are compared after folding (see fold), so they are written folded.
// No spelling may appear under two roles.
var aliasTable = []struct {
	role    Role
	aliases []string
}{
	{Administrator, []string{
		"administrator", "admin", "administrador", "administradora",
		"super_admin", "superadmin", "super_administrador", "root", "sysadmin",
	}},
	{ClinicManager, []string{
		"clinic_manager", "clinic_admin", "clinic_owner", "manager",
		"gestor", "gestora", "gestor_clinica", "gerente", "gerente_clinica",
		"dono_clinica", "clinica", "clinic",
	}},
	{Professional, []string{
		"professional", "profissional", "profissional_saude", "medico", "medica",
		"doctor", "dentista", "dentist", "fisioterapeuta", "nutricionista",
		"psicologo", "psicologa", "enfermeiro", "enfermeira", "nurse",
		"esteticista", "prestador", "especialista",
	}},
	{Supplier, []string{
		"supplier", "fornecedor", "fornecedora", "vendor", "distribuidor",
		"distribuidora", "seller", "vendedor",
	}},
	{Patient, []string{
		"patient", "paciente", "cliente", "client", "customer", "user", "usuario",
	}},
}

// aliasIndex maps a folded alias to its role. Built once at init.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]Role {
	idx := make(map[string]Role)
	for _, set := range aliasTable {
		for _, raw := range set.aliases {
			key := fold(raw)
			if owner, dup := idx[key]; dup {
				panic(fmt.Sprintf("role: alias %q is declared for both %s and %s", raw, owner, set.role))
			}
			idx[key] = set.role
		}
	}
	return idx
}

// Aliases returns a copy of the alias table keyed by role.
func Aliases() map[Role][]string {
	out := make(map[Role][]string, len(aliasTable))
	for _, set := range aliasTable {
		out[set.role] = append([]string(nil), set.aliases...)
	}
	return out
}
