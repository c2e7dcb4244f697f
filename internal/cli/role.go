package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rbmarquez/doctorq/pkg/role"
)

func newRoleCommand(_ *app) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "role <raw-role>...",
		Short: "Normalize identity provider role strings",
		Long: `Print the canonical role of each raw role string. With --resolve the
arguments are treated as role sources in precedence order and a single
resolved role is printed.

Examples:
  permauthority role "Médica" GESTORA fornecedor
  permauthority role --resolve "" "Gestor" paciente`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if resolve {
				fmt.Fprintln(out, role.Resolve(args...))
				return nil
			}
			for _, raw := range args {
				fmt.Fprintf(out, "%q\t%s\n", raw, role.Normalize(raw))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve the arguments as ordered role sources")
	return cmd
}
