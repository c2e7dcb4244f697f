package principal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/role"
)

func TestFromIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity principal.Identity
		want     role.Role
	}{
		{"raw role claim", principal.Identity{RawRole: "Médica"}, role.Professional},
		{"profile role when claim blank", principal.Identity{RawRole: " ", ProfileRole: "Gestora"}, role.ClinicManager},
		{"legacy user type last", principal.Identity{LegacyUserType: "FORNECEDOR"}, role.Supplier},
		{"claim wins over profile", principal.Identity{RawRole: "paciente", ProfileRole: "admin"}, role.Patient},
		{"unknown claim is patient", principal.Identity{RawRole: "owner-of-everything", ProfileRole: "admin"}, role.Patient},
		{"nothing", principal.Identity{}, role.Patient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := principal.FromIdentity(" user-1 ", "p-1", tt.identity)
			assert.Equal(t, "user-1", p.UserID)
			assert.Equal(t, "p-1", p.ProfileID)
			assert.Equal(t, tt.want, p.Role)
		})
	}
}

func TestRoleSources(t *testing.T) {
	id := principal.Identity{RawRole: "a", ProfileRole: "b", LegacyUserType: "c"}
	assert.Equal(t, []string{"a", "b", "c"}, principal.RoleSources(id))
}

func TestContext(t *testing.T) {
	ctx := context.Background()

	_, ok := principal.FromContext(ctx)
	assert.False(t, ok)

	_, ok = principal.FromContext(principal.WithPrincipal(ctx, principal.Principal{Role: role.Patient}))
	assert.False(t, ok, "anonymous principals are not returned")

	want := principal.Principal{UserID: "u1", Role: role.Supplier}
	got, ok := principal.FromContext(principal.WithPrincipal(ctx, want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
