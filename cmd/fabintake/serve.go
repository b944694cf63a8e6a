package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/FabIntake/internal/api"
	"github.com/dharsanguruparan/FabIntake/internal/config"
	"github.com/dharsanguruparan/FabIntake/internal/intake"
	"github.com/dharsanguruparan/FabIntake/internal/session"
	"github.com/dharsanguruparan/FabIntake/internal/submission"
)

func newServeCmd() *cobra.Command {
	var address string
	var failEvery int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the intake HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			logger := config.SetupLogger(cfg)
			logger.Info("fabintake starting",
				slog.String("version", config.Version),
				slog.String("staging_dir", cfg.StagingDir),
			)

			boundary := submission.NewSimulated(cfg.SubmitDelay, logger, submission.FailEvery(failEvery))
			store := session.NewStore(cfg.SessionCapacity, cfg.SessionTTL, func() *intake.Intake {
				return intake.New(boundary, intake.WithLogger(logger))
			}, logger)
			srv, err := api.New(cfg, store, logger)
			if err != nil {
				return err
			}
			if err := srv.Run(cmd.Context()); err != nil {
				return err
			}
			logger.Info("fabintake stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (overrides FABINTAKE_ADDRESS)")
	cmd.Flags().IntVar(&failEvery, "fail-every", 0, "Make every n-th simulated submission fail")
	return cmd
}
