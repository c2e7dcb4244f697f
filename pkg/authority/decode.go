package authority

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/rbac"
)

// Decode maps a payload onto an immutable permission set.
//
// Unknown groups, resources and actions are dropped one by one with a warning,
// so a single bad name does not discard the remaining grants. Only true
// leaves become grants. Detailed entries for groups missing from the group
// list are kept; the resolver's group gate ignores them.
func Decode(ctx context.Context, p Payload, vocab rbac.Vocabulary, log *slog.Logger) *rbac.PermissionSet {
	if log == nil {
		log = logger.Discard()
	}

	snap := rbac.Snapshot{
		Groups:      make([]rbac.Group, 0, len(p.Groups)),
		IsAdmin:     bool(p.IsAdmin),
		ProfileID:   string(p.ProfileID),
		ProfileName: p.ProfileName,
	}

	for _, name := range p.Groups {
		g, ok := rbac.ParseGroup(name)
		if !ok {
			log.WarnContext(ctx, "dropping unknown permission group", slog.String("group", name))
			continue
		}
		snap.Groups = append(snap.Groups, g)
	}

	for _, groupName := range slices.Sorted(maps.Keys(p.Detailed)) {
		g, ok := rbac.ParseGroup(groupName)
		if !ok {
			log.WarnContext(ctx, "dropping grants of unknown group", slog.String("group", groupName))
			continue
		}
		resources := p.Detailed[groupName]
		for _, resName := range slices.Sorted(maps.Keys(resources)) {
			res := rbac.Resource(resName)
			if !vocab.HasResource(res) {
				log.WarnContext(ctx, "dropping unknown resource", logger.Group(g), slog.String("resource", resName))
				continue
			}
			actions := resources[resName]
			for _, actName := range slices.Sorted(maps.Keys(actions)) {
				act := rbac.Action(actName)
				if !vocab.HasAction(act) {
					log.WarnContext(ctx, "dropping unknown action",
						logger.Group(g), logger.Resource(res), slog.String("action", actName))
					continue
				}
				if actions[actName] {
					snap.Grants = append(snap.Grants, rbac.NewCheck(g, res, act))
				}
			}
		}
	}

	return rbac.NewPermissionSet(snap)
}

// Encode renders a set in the wire format. Only granted actions are listed.
func Encode(set *rbac.PermissionSet) Payload {
	snap := set.Snapshot()
	p := Payload{
		Groups:      make(GroupList, 0, len(snap.Groups)),
		Detailed:    DetailedGrants{},
		IsAdmin:     Flag(snap.IsAdmin),
		ProfileID:   ProfileID(snap.ProfileID),
		ProfileName: snap.ProfileName,
	}
	for _, g := range snap.Groups {
		p.Groups = append(p.Groups, string(g))
	}
	for _, c := range snap.Grants {
		resources, ok := p.Detailed[string(c.Group)]
		if !ok {
			resources = ResourceGrants{}
			p.Detailed[string(c.Group)] = resources
		}
		actions, ok := resources[string(c.Resource)]
		if !ok {
			actions = ActionFlags{}
			resources[string(c.Resource)] = actions
		}
		actions[string(c.Action)] = true
	}
	return p
}
