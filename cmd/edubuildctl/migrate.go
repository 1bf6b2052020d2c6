package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/edubuild-api/pkg/database"
	"github.com/noah-isme/edubuild-api/pkg/logger"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	run := func(step func(m *database.Migrator, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			m, err := database.NewMigrator(a.db.DB, logger.NewGooseLogger(a.log))
			if err != nil {
				return err
			}
			return step(m, cmd)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				return m.Up(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				return m.Down(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: run(func(m *database.Migrator, cmd *cobra.Command) error {
				return m.Status(cmd.Context())
			}),
		},
	)
	return cmd
}
