package cli

import (
	"github.com/spf13/cobra"

	"github.com/rbmarquez/doctorq/internal/devauthority"
	"github.com/rbmarquez/doctorq/pkg/httpserver"
	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/rbac"
	"github.com/rbmarquez/doctorq/pkg/redis"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr     string
		fixtures string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve permission fixtures over HTTP",
		Long: `Serve per-user permission documents from a YAML fixture file on
GET /permissions/users/{userID}/permissions, plus GET /healthz. When REDIS_URL
is set /healthz also reports Redis readiness, for stacks sharing permission
snapshots.

Examples:
  # Serve ./fixtures.yaml on :8081
  permauthority serve

  # Custom fixtures and a bearer token
  permauthority serve --fixtures dev/users.yaml --token secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr = firstNonEmpty(addr, a.cfg.Server.Addr)
			fixtures = firstNonEmpty(fixtures, a.cfg.Server.Fixtures)
			token = firstNonEmpty(token, a.cfg.Authority.Token)

			f, err := devauthority.LoadFixtures(fixtures, rbac.DefaultMatrix())
			if err != nil {
				return err
			}
			a.log.Info("fixtures loaded", logger.Component("devauthority"), "users", len(f.Users()), "path", fixtures)

			opts := []devauthority.Option{
				devauthority.WithToken(token),
				devauthority.WithLogger(a.log),
			}
			if a.cfg.Redis.Enabled() {
				rdb, err := redis.Connect(cmd.Context(), a.cfg.Redis)
				if err != nil {
					return err
				}
				defer rdb.Close()
				opts = append(opts, devauthority.WithProbes(redis.Healthcheck(rdb)))
			}

			srv := httpserver.New(
				httpserver.WithAddr(addr),
				httpserver.WithShutdownTimeout(a.cfg.Server.ShutdownTimeout),
				httpserver.WithLogger(a.log),
			)
			return srv.Run(cmd.Context(), devauthority.NewRouter(f, opts...))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SERVER_ADDR)")
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture file (default SERVER_FIXTURES)")
	cmd.Flags().StringVar(&token, "token", "", "required bearer token (default AUTHORITY_TOKEN)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
