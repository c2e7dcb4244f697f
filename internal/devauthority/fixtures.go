package devauthority

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/rbmarquez/doctorq/pkg/authority"
	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/role"
)

var ErrInvalidFixtures = errors.New("devauthority.invalid_fixtures")

// Fixture is one user's permission document. When Role is set, the role's
// matrix row is merged under the explicit fields.
type Fixture struct {
	Role              string `yaml:"role"`
	authority.Payload `yaml:",inline"`
}

type fixtureFile struct {
	Users map[string]Fixture `yaml:"users"`
}

// Fixtures holds the resolved wire documents keyed by user id.
type Fixtures struct {
	users map[string]authority.Payload
}

// LoadFixtures reads a fixture file.
func LoadFixtures(path string, m rbac.Matrix) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidFixtures, err)
	}
	return ParseFixtures(data, m)
}

// ParseFixtures decodes YAML fixtures:
//
//	users:
//	  u-manager:
//	    role: clinic_manager
//	    id_perfil: "10"
//	  u-admin:
//	    is_admin: true
func ParseFixtures(data []byte, m rbac.Matrix) (*Fixtures, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrInvalidFixtures, err)
	}

	f := &Fixtures{users: make(map[string]authority.Payload, len(file.Users))}
	for id, fx := range file.Users {
		payload := fx.Payload
		if fx.Role != "" {
			r, ok := role.Parse(fx.Role)
			if !ok {
				return nil, fmt.Errorf("%w: user %q has unknown role %q", ErrInvalidFixtures, id, fx.Role)
			}
			payload = merge(authority.Encode(rbac.MatrixSet(m, r)), payload)
		}
		f.users[id] = payload
	}
	return f, nil
}

// Lookup returns the document of userID.
func (f *Fixtures) Lookup(userID string) (authority.Payload, bool) {
	p, ok := f.users[userID]
	return p, ok
}

// Users returns the known user ids, sorted.
func (f *Fixtures) Users() []string {
	return slices.Sorted(maps.Keys(f.users))
}

// merge overlays explicit fields on base. Groups are unioned and explicit
// leaves override base leaves.
func merge(base, over authority.Payload) authority.Payload {
	out := base
	for _, g := range over.Groups {
		if !slices.Contains(out.Groups, g) {
			out.Groups = append(out.Groups, g)
		}
	}
	for group, resources := range over.Detailed {
		if out.Detailed[group] == nil {
			out.Detailed[group] = authority.ResourceGrants{}
		}
		for res, actions := range resources {
			if out.Detailed[group][res] == nil {
				out.Detailed[group][res] = authority.ActionFlags{}
			}
			maps.Copy(out.Detailed[group][res], actions)
		}
	}
	out.IsAdmin = base.IsAdmin || over.IsAdmin
	if over.ProfileID != "" {
		out.ProfileID = over.ProfileID
	}
	if over.ProfileName != "" {
		out.ProfileName = over.ProfileName
	}
	return out
}
