package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vet-consult-intake/internal/domain/consults"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/tui"
)

func tuiCmd() *cobra.Command {
	var vetID string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Carga consultas desde la terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if vetID == "" {
				vetID = cfg.DefaultVeterinarianID
			}

			// los logs van a stderr para no pisar los prompts
			log := newLogger(cfg, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			be, err := newBackend(cfg, log)
			if err != nil {
				return err
			}
			reg, err := species.NewRegistry()
			if err != nil {
				return err
			}

			d, err := consults.New(consults.Options{
				Catalog:        be,
				Forms:          reg,
				Submitter:      be,
				VeterinarianID: vetID,
				ResetDelay:     cfg.SuccessResetDelay,
				Logger:         log,
			})
			if err != nil {
				return err
			}
			defer d.Close()

			err = tui.NewIntake(d, tui.NewSurveyDriver(cmd.OutOrStdout()), log).Run(ctx)
			if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&vetID, "vet", "", "veterinarian_id para las consultas (default DEFAULT_VETERINARIAN_ID)")
	return cmd
}
