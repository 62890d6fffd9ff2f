package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vet-consult-intake/internal/adapters/auth/introspect"
	"vet-consult-intake/internal/adapters/auth/jwtauth"
	"vet-consult-intake/internal/adapters/backend"
	pg "vet-consult-intake/internal/adapters/storage/postgres"
	"vet-consult-intake/internal/config"
	"vet-consult-intake/internal/domain/species"
	"vet-consult-intake/internal/platform/httpclient"
	"vet-consult-intake/internal/platform/logger"
	"vet-consult-intake/internal/ports/auth"
	"vet-consult-intake/internal/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "intake",
		Short:        "Formularios de consulta veterinaria por especie",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(tuiCmd())
	root.AddCommand(speciesCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(vetsCmd())
	return root
}

func newLogger(cfg *config.Config, out io.Writer) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
		Out:    out,
	})
}

// loadConfig carga y valida; serve y tui necesitan el backend.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newBackend(cfg *config.Config, log logger.Logger) (*backend.Client, error) {
	hc, err := httpclient.New(cfg.BackendBaseURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	return backend.New(hc, log.With(map[string]any{"component": "backend"})), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la interfaz web y el API JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// newVerifier elige el modo de auth: JWT HS256, introspección remota o nil (dev).
func newVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	switch {
	case cfg.AuthJWTSecret != "":
		return jwtauth.NewVerifier(cfg.AuthJWTSecret, cfg.AppName)
	case cfg.AuthVerifyURL != "":
		return introspect.NewVerifier(introspect.Config{
			URL:          cfg.AuthVerifyURL,
			APIKey:       cfg.AuthAPIKey,
			APIKeyHeader: cfg.AuthAPIKeyHeader,
			Timeout:      cfg.HTTPTimeout,
		})
	}
	return nil, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := newBackend(cfg, log)
	if err != nil {
		return err
	}
	reg, err := species.NewRegistry()
	if err != nil {
		return err
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	if verifier == nil {
		log.Warn("no token verifier configured, running in dev auth mode", map[string]any{
			"header": "X-Debug-User-ID",
		})
	}

	opts := router.Options{
		AuthVerifier:          verifier,
		Registry:              reg,
		Logger:                log,
		DefaultVeterinarianID: cfg.DefaultVeterinarianID,
		ResetDelay:            cfg.SuccessResetDelay,
		SecureCookie:          verifier != nil,
	}

	if cfg.DatabaseDSN != "" {
		db, err := pg.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := pg.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		opts.DB = db
	}

	sessions := router.NewSessions(router.SessionsOptions{
		Backend:    be,
		Registry:   reg,
		Logger:     log,
		ResetDelay: cfg.SuccessResetDelay,
		TTL:        cfg.SessionTTL,
	})
	defer sessions.Close()
	opts.Sessions = sessions

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
	}

	go sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "backend": cfg.BackendBaseURL})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}
