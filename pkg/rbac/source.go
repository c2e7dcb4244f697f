package rbac

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rbmarquez/doctorq/pkg/role"
)

//go:embed matrix.yaml
var defaultMatrixYAML []byte

// RoleGrant is the matrix row of one role.
type RoleGrant struct {
	// Resources maps each resource the role may touch to its permitted actions.
	Resources map[Resource][]Action `yaml:"resources"`

	// Inherits lists roles whose grants are included in this one.
	Inherits []role.Role `yaml:"inherits"`
}

// MatrixSource provides the role rows a Matrix is built from.
type MatrixSource interface {
	Load(ctx context.Context) (map[role.Role]RoleGrant, error)
}

// inMemSource serves role rows from memory.
type inMemSource struct {
	roles map[role.Role]RoleGrant
}

// NewInMemSource creates a source from a map of role rows.
// The input is deep-copied so later changes to it have no effect.
func NewInMemSource(roles map[role.Role]RoleGrant) MatrixSource {
	return &inMemSource{roles: copyGrants(roles)}
}

func (s *inMemSource) Load(ctx context.Context) (map[role.Role]RoleGrant, error) {
	return copyGrants(s.roles), nil
}

// yamlSource decodes role rows from a YAML document of the form:
//
//	roles:
//	  professional:
//	    resources:
//	      appointments: [view, create]
//	  clinic_manager:
//	    inherits: [professional]
type yamlSource struct {
	data []byte
}

// NewYAMLSource creates a source from a YAML document.
func NewYAMLSource(data []byte) MatrixSource {
	return &yamlSource{data: data}
}

// DefaultSource returns the compiled-in matrix definition.
func DefaultSource() MatrixSource {
	return NewYAMLSource(defaultMatrixYAML)
}

func (s *yamlSource) Load(ctx context.Context) (map[role.Role]RoleGrant, error) {
	var doc struct {
		Roles map[role.Role]RoleGrant `yaml:"roles"`
	}
	if err := yaml.Unmarshal(s.data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidMatrix, fmt.Errorf("decode yaml: %w", err))
	}
	return doc.Roles, nil
}

func copyGrants(roles map[role.Role]RoleGrant) map[role.Role]RoleGrant {
	out := make(map[role.Role]RoleGrant, len(roles))
	for name, grant := range roles {
		resources := make(map[Resource][]Action, len(grant.Resources))
		for res, actions := range grant.Resources {
			resources[res] = append([]Action(nil), actions...)
		}
		out[name] = RoleGrant{
			Resources: resources,
			Inherits:  append([]role.Role(nil), grant.Inherits...),
		}
	}
	return out
}
