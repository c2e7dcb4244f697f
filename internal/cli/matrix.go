package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/role"
)

func newMatrixCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix [role]",
		Short: "Print the flattened role matrix",
		Long: `Print the compiled-in role matrix with inheritance applied, as YAML.
With a role argument only that role's row is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := rbac.DefaultMatrix()
			roles := m.Roles()
			if len(args) == 1 {
				r, ok := role.Parse(args[0])
				if !ok {
					return fmt.Errorf("unknown role %q", args[0])
				}
				roles = []role.Role{r}
			}

			out := make(map[role.Role]map[rbac.Resource][]rbac.Action, len(roles))
			for _, r := range roles {
				row := make(map[rbac.Resource][]rbac.Action)
				for _, res := range m.Resources(r) {
					row[res] = m.PermittedActions(r, res)
				}
				out[r] = row
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
