package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	shellhttp "acmeshell/internal/shell/app/http"
	"acmeshell/internal/shell/config"
	migrations "acmeshell/migrations/shell"
	"acmeshell/pkg/db/postgres"
	"acmeshell/pkg/logger"
)

// Константы для сообщений.
const (
	LogMigrationsDone = "migrations finished"

	ErrLoadConfig    = "failed to load configuration"
	ErrRunMigrations = "failed to run migrations"
)

// migrateFunc применяет миграции; подменяется в тестах.
type migrateFunc func(cmd *cobra.Command, dsn string, dir postgres.Direction) error

func runMigrations(cmd *cobra.Command, dsn string, dir postgres.Direction) error {
	return postgres.Migrate(cmd.Context(), dsn, migrations.FS, dir)
}

// newRootCmd собирает дерево команд shellctl.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shellctl",
		Short:         "Maintenance commands for the acmeshell web shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd(runMigrations), newRoutesCmd())
	return root
}

func newMigrateCmd(migrate migrateFunc) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back account database migrations",
		Long:      "Runs the embedded account migrations against Postgres. The DSN defaults to the SHELL_POSTGRES_* settings.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(postgres.Up), string(postgres.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dir, err := postgres.ParseDirection(args[0])
			if err != nil {
				return err
			}

			if dsn == "" {
				cfg, err := config.Load(ctx, config.DefaultEnvFiles...)
				if err != nil {
					return fmt.Errorf("%s: %w", ErrLoadConfig, err)
				}
				dsn = cfg.Postgres.GetDSN()
			}

			if err := migrate(cmd, dsn, dir); err != nil {
				return fmt.Errorf("%s: %w", ErrRunMigrations, err)
			}

			logger.Log(ctx).Info(ctx, LogMigrationsDone, zap.String("direction", string(dir)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string")
	return cmd
}

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if _, err := fmt.Fprintln(w, "METHOD\tPATH\tDESCRIPTION"); err != nil {
				return err
			}
			for _, r := range shellhttp.RouteTable() {
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Method, r.Path, r.Description); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}
