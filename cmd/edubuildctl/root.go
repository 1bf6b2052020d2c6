package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/pkg/config"
	"github.com/noah-isme/edubuild-api/pkg/database"
	"github.com/noah-isme/edubuild-api/pkg/logger"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sqlx.DB
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "edubuildctl",
		Short:         "Operator tooling for the EduBuild API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}

	root.AddCommand(newMigrateCmd(a), newSeedCmd(a), newCreateAdminCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	a.cfg, a.log, a.db = cfg, log, db
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
