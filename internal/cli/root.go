package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rbmarquez/doctorq/pkg/config"
	"github.com/rbmarquez/doctorq/pkg/logger"
	"github.com/rbmarquez/doctorq/pkg/requestid"
)

// app carries state shared by subcommands once the root command has loaded it.
type app struct {
	envFiles []string
	cfg      config.Config
	log      *slog.Logger
}

// NewRootCommand builds the permauthority command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "permauthority",
		Short: "Development permission authority and access engine tools",
		Long: `permauthority serves per-user permission documents for local development
and exercises the access engine from the command line.

Configuration is read from the environment and optional .env files
(AUTHORITY_*, PERMISSION_CACHE_*, REDIS_*, SESSION_*, LOG_*, SERVER_*).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "load variables from these .env files")

	root.AddCommand(
		newServeCommand(a),
		newCheckCommand(a),
		newRoleCommand(a),
		newMatrixCommand(a),
		newPrincipalCommand(a),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(
		logger.WithEnvironment(cfg.Log.Env, cfg.Log.Service),
		logger.WithLevelName(cfg.Log.Level),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	return nil
}
