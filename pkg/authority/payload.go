package authority

import (
	"bytes"
	"encoding/json"
)

// Payload is the permission document returned by the authority for one user.
// Unknown fields are ignored and missing fields decode to their zero value.
// Nested values of the wrong JSON type are dropped rather than failing the
// whole document.
type Payload struct {
	Groups      GroupList      `json:"grupos_acesso" yaml:"grupos_acesso"`
	Detailed    DetailedGrants `json:"permissoes_detalhadas" yaml:"permissoes_detalhadas"`
	IsAdmin     Flag           `json:"is_admin" yaml:"is_admin"`
	ProfileID   ProfileID      `json:"id_perfil" yaml:"id_perfil"`
	ProfileName string         `json:"nm_perfil" yaml:"nm_perfil"`
}

// GroupList is the list of group names. Elements that are not strings are
// dropped, and a value that is not an array decodes as empty.
type GroupList []string

func (g *GroupList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*g = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(GroupList, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, name)
		}
	}
	*g = out
	return nil
}

// DetailedGrants maps group -> resource -> action -> granted.
type DetailedGrants map[string]ResourceGrants

// ResourceGrants maps resource -> action -> granted.
type ResourceGrants map[string]ActionFlags

// ActionFlags maps action -> granted.
type ActionFlags map[string]Flag

// Flag is a boolean that is true only for the JSON literal true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag(bytes.Equal(bytes.TrimSpace(data), []byte("true")))
	return nil
}

// ProfileID accepts a JSON string or number.
type ProfileID string

func (p *ProfileID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProfileID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			// booleans, arrays and objects carry no usable id
			*p = ""
			return nil
		}
		*p = ProfileID(n.String())
	}
	return nil
}

func (p ProfileID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

func (g *DetailedGrants) UnmarshalJSON(data []byte) error {
	m, err := decodeObject[ResourceGrants](data)
	*g = m
	return err
}

func (r *ResourceGrants) UnmarshalJSON(data []byte) error {
	m, err := decodeObject[ActionFlags](data)
	*r = m
	return err
}

func (a *ActionFlags) UnmarshalJSON(data []byte) error {
	m, err := decodeObject[Flag](data)
	*a = m
	return err
}

// decodeObject decodes a JSON object; any other JSON value yields nil.
func decodeObject[V any](data []byte) (map[string]V, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil
	}
	var m map[string]V
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ParsePayload decodes a response body.
func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// String renders the profile id for logs.
func (p ProfileID) String() string {
	return string(p)
}
