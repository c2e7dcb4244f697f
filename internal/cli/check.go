package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbmarquez/doctorq/pkg/authority"
	"github.com/rbmarquez/doctorq/pkg/guard"
	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/permcache"
	"github.com/rbmarquez/doctorq/pkg/principal"
	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/redis"
	"github.com/rbmarquez/doctorq/pkg/role"
)

type checkResult struct {
	UserID     string       `json:"user_id"`
	Role       role.Role    `json:"role"`
	Check      string       `json:"check"`
	Decision   string       `json:"decision"`
	Preview    bool         `json:"preview"`
	Groups     []rbac.Group `json:"accessible_groups"`
	IsAdmin    bool         `json:"is_admin"`
	ProfileID  string       `json:"profile_id,omitempty"`
	MatrixOnly bool         `json:"matrix_only,omitempty"`
}

func newCheckCommand(a *app) *cobra.Command {
	var (
		rawRole    string
		matrixOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "check <user-id> <group>[:<resource>:<action>]",
		Short: "Resolve a user's permissions and evaluate one check",
		Long: `Fetch the user's permission set from the configured authority
(AUTHORITY_URL) and evaluate a group or resource/action check against it.

Examples:
  # Group access
  permauthority check u-manager clinic

  # Resource/action permission with the user's raw provider role
  permauthority check u-manager clinic:appointments:create --role "Gestora"

  # Role matrix only, no authority call
  permauthority check u-1 professional:medical_records:edit --role medico --matrix-only`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := args[0]

			group, check, isGroup, err := parseCheck(args[1])
			if err != nil {
				return err
			}

			p := principal.FromIdentity(userID, "", principal.Identity{RawRole: rawRole})

			var g *guard.Guard
			if matrixOnly {
				g = guard.New(nil, guard.WithMatrix(rbac.DefaultMatrix()), guard.WithLogger(a.log))
			} else {
				cache, closeFn, err := a.permissionCache(cmd)
				if err != nil {
					return err
				}
				defer closeFn()
				g = guard.New(cache, guard.WithMatrix(rbac.DefaultMatrix()), guard.WithLogger(a.log))
			}

			var d guard.Decision
			if isGroup {
				d = g.AuthorizeGroup(ctx, p, group)
			} else {
				d = g.Authorize(ctx, p, check)
			}

			set := g.PermissionSet(ctx, p)
			res := checkResult{
				UserID:     p.UserID,
				Role:       p.Role,
				Check:      args[1],
				Decision:   d.String(),
				Preview:    !isGroup && g.Preview(p, check.Resource, check.Action),
				Groups:     rbac.AccessibleGroups(set),
				IsAdmin:    set.IsAdmin(),
				ProfileID:  set.ProfileID(),
				MatrixOnly: matrixOnly,
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "user:     %s (%s)\n", res.UserID, res.Role)
			fmt.Fprintf(out, "check:    %s\n", res.Check)
			fmt.Fprintf(out, "decision: %s\n", res.Decision)
			fmt.Fprintf(out, "groups:   %s\n", joinGroups(res.Groups))
			if res.IsAdmin {
				fmt.Fprintln(out, "admin:    yes")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawRole, "role", "", "raw identity provider role of the user")
	cmd.Flags().BoolVar(&matrixOnly, "matrix-only", false, "decide from the role matrix without calling the authority")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

// permissionCache wires the authority client, the optional Redis store and the cache.
func (a *app) permissionCache(cmd *cobra.Command) (*permcache.Cache, func(), error) {
	ctx := cmd.Context()
	client, err := authority.NewClientFromConfig(ctx, a.cfg.Authority, authority.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}

	opts := []permcache.Option{
		permcache.WithTTL(a.cfg.Cache.TTL),
		permcache.WithCapacity(a.cfg.Cache.Capacity),
		permcache.WithFetchTimeout(a.cfg.Cache.FetchTimeout),
		permcache.WithLogger(a.log),
	}

	closeFn := func() {}
	if a.cfg.Cache.Shared {
		rdb, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() {
			if err := rdb.Close(); err != nil {
				a.log.Warn("closing redis", logger.Error(err))
			}
		}
		opts = append(opts, permcache.WithStore(redis.NewPermissionStore(rdb,
			redis.WithKeyPrefix(a.cfg.Cache.SharedKeys),
			redis.WithSnapshotTTL(a.cfg.Cache.SharedTTL),
		)))
	}

	return permcache.New(client, opts...), closeFn, nil
}

// parseCheck accepts "group" or "group:resource:action".
func parseCheck(s string) (rbac.Group, rbac.Check, bool, error) {
	parts := strings.Split(s, ":")
	group, ok := rbac.ParseGroup(parts[0])
	if !ok {
		return "", rbac.Check{}, false, fmt.Errorf("unknown group %q (want one of %s)", parts[0], joinGroups(rbac.Groups()))
	}
	switch len(parts) {
	case 1:
		return group, rbac.Check{}, true, nil
	case 3:
		if parts[1] == "" || parts[2] == "" {
			break
		}
		return group, rbac.NewCheck(group, rbac.Resource(parts[1]), rbac.Action(parts[2])), false, nil
	}
	return "", rbac.Check{}, false, fmt.Errorf("malformed check %q, want group or group:resource:action", s)
}

func joinGroups(groups []rbac.Group) string {
	if len(groups) == 0 {
		return "-"
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}
