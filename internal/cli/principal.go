package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbmarquez/doctorq/pkg/principal"
)

func newPrincipalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Issue and inspect session principal tokens",
		Long: `Issue and inspect session principal tokens signed with a key derived
from SESSION_SIGNING_KEY.`,
	}
	cmd.AddCommand(newPrincipalIssueCommand(a), newPrincipalInspectCommand(a))
	return cmd
}

func newPrincipalIssueCommand(a *app) *cobra.Command {
	var (
		rawRole   string
		profileID string
	)

	cmd := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Print a signed token for a user",
		Long: `Print a signed principal token for a user. The role is normalized from
the raw provider value; unknown values become patient.

Examples:
  permauthority principal issue u-manager --role Gestora --profile-id 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.sessionCodec()
			if err != nil {
				return err
			}
			p := principal.FromIdentity(args[0], profileID, principal.Identity{RawRole: rawRole})
			token, err := codec.Issue(p, a.cfg.Session.TTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&rawRole, "role", "", "raw identity provider role")
	cmd.Flags().StringVar(&profileID, "profile-id", "", "access profile identifier")
	return cmd
}

func newPrincipalInspectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [token]",
		Short: "Verify a token and print its claims",
		Long:  `Verify a principal token and print its claims as JSON. Reads the token from stdin when no argument is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.sessionCodec()
			if err != nil {
				return err
			}

			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				token = strings.TrimSpace(string(data))
			}

			claims, err := codec.Parse(token)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}

func (a *app) sessionCodec() (*principal.Codec, error) {
	if a.cfg.Session.SigningKey == "" {
		return nil, errors.New("SESSION_SIGNING_KEY is not set")
	}
	return principal.NewSessionCodec(a.cfg.Session.SigningKey, principal.WithIssuer(a.cfg.Log.Service))
}
