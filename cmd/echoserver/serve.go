package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dushyant25398/Persistent-Systems/internal/config"
	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/logger"
	"github.com/dushyant25398/Persistent-Systems/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the echo listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Observability, os.Stdout)
	if err != nil {
		return err
	}

	nrApp, err := logger.NewRelic(cfg.Observability)
	if err != nil {
		log.Warn().Err(err).Msg("new relic disabled")
	}
	if nrApp != nil {
		defer nrApp.Shutdown(10 * time.Second)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out []sinks.Sink
	if cfg.Archive.Enabled {
		specs := sinks.SpecsFromConfig(cfg.Archive.Sinks)
		out, err = sinks.GlobalRegistry.Build(ctx, specs, sinks.Deps{Logger: log, NewRelic: nrApp})
		if err != nil {
			log.Error().Err(err).Msg("could not build archive sinks")
			return err
		}
	}

	srv := server.New(cfg, server.Deps{Logger: log, NewRelic: nrApp, Sinks: out})
	err = srv.Start(ctx)
	if st := srv.Status(); st.Enabled {
		log.Info().Int64("dropped", st.Dropped).Str("last_error", st.LastError).Msg("archive stopped")
	}
	if err != nil {
		log.Error().Err(err).Msg("server exited")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
