package rbac

import "slices"

// Vocabulary is the closed set of resources and actions a deployment recognises.
// Data received from the permission authority is filtered against it.
type Vocabulary struct {
	resources map[Resource]struct{}
	actions   map[Action]struct{}
}

var defaultVocabulary = NewVocabulary(
	[]Resource{
		ResourceAppointments, ResourcePatients, ResourceProfessionals, ResourceMedicalRecords,
		ResourceSchedule, ResourceFinancials, ResourceUsers, ResourceProfile, ResourceProducts,
		ResourceOrders, ResourceMarketplace, ResourceReports, ResourceSettings, ResourceClinics,
		ResourceSuppliers,
	},
	[]Action{
		ActionView, ActionCreate, ActionEdit, ActionDelete,
		ActionViewAll, ActionViewOwn, ActionCancel, ActionExportReports,
	},
)

// DefaultVocabulary returns the compiled-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return defaultVocabulary
}

// NewVocabulary builds a vocabulary from the given names. Empty names are ignored.
func NewVocabulary(resources []Resource, actions []Action) Vocabulary {
	v := Vocabulary{
		resources: make(map[Resource]struct{}, len(resources)),
		actions:   make(map[Action]struct{}, len(actions)),
	}
	for _, r := range resources {
		if r != "" {
			v.resources[r] = struct{}{}
		}
	}
	for _, a := range actions {
		if a != "" {
			v.actions[a] = struct{}{}
		}
	}
	return v
}

// Extend returns a new vocabulary with extra resources and actions added.
func (v Vocabulary) Extend(resources []Resource, actions []Action) Vocabulary {
	return NewVocabulary(append(v.Resources(), resources...), append(v.Actions(), actions...))
}

func (v Vocabulary) HasResource(r Resource) bool {
	_, ok := v.resources[r]
	return ok
}

func (v Vocabulary) HasAction(a Action) bool {
	_, ok := v.actions[a]
	return ok
}

// Resources returns the known resources, sorted.
func (v Vocabulary) Resources() []Resource {
	out := make([]Resource, 0, len(v.resources))
	for r := range v.resources {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Actions returns the known actions, sorted.
func (v Vocabulary) Actions() []Action {
	out := make([]Action, 0, len(v.actions))
	for a := range v.actions {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
