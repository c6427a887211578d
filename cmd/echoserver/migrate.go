package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dushyant25398/Persistent-Systems/internal/config"
	"github.com/dushyant25398/Persistent-Systems/internal/database"
	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks/pgsink"
	"github.com/dushyant25398/Persistent-Systems/internal/logger"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the request_logs schema to the Postgres archive",
		Long: `migrate applies the embedded migrations to the database named by
archive.sinks.postgres.url (ECHOSERVER_ARCHIVE__SINKS__POSTGRES__URL).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Observability, os.Stdout)
			if err != nil {
				return err
			}

			url := sinks.Config(cfg.Archive.Sinks[pgsink.TypeName]).String("url", "")
			if url == "" {
				return errors.New("archive.sinks.postgres.url is not set")
			}

			ctx := cmd.Context()
			pool, err := database.NewPool(ctx, database.PoolOptions{URL: url, MaxConns: 1}, log, nil)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := database.MigrationCount()
			if err != nil {
				return err
			}
			log.Info().Int("available", n).Msg("applying migrations")
			return database.Migrate(ctx, pool, log)
		},
	}
}
