package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vet-consult-intake/internal/adapters/auth/jwtauth"
	pg "vet-consult-intake/internal/adapters/storage/postgres"
	"vet-consult-intake/internal/config"
	"vet-consult-intake/internal/domain/veterinarians"
	"vet-consult-intake/internal/ports/auth"
)

var errNoDatabase = errors.New("DB_DSN is required")

// tokenCmd firma un bearer de desarrollo con AUTH_JWT_SECRET.
func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un bearer token HS256 para pruebas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			v, err := jwtauth.NewVerifier(cfg.AuthJWTSecret, cfg.AppName)
			if err != nil {
				return err
			}
			tok, err := v.Issue(auth.Claims{UserID: userID, Email: email}, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (sub)")
	cmd.Flags().StringVar(&email, "email", "", "email opcional")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "vigencia del token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// vetsCmd administra el mapeo usuario -> veterinarian_id en Postgres.
func vetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vets",
		Short: "Administra veterinarios (requiere DB_DSN)",
	}

	var in veterinarians.RegisterInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Registra un veterinario para un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := vetService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			v, err := svc.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", v.ID, v.UserID, v.Name)
			return nil
		},
	}
	add.Flags().StringVar(&in.ID, "id", "", "veterinarian_id (uuid si se omite)")
	add.Flags().StringVar(&in.UserID, "user", "", "user id del token")
	add.Flags().StringVar(&in.Name, "name", "", "nombre")
	add.Flags().StringVar(&in.LicenseNumber, "license", "", "matrícula")
	_ = add.MarkFlagRequired("user")
	_ = add.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los veterinarios registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := vetService(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			vets, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSER\tNOMBRE\tMATRICULA")
			for _, v := range vets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.UserID, v.Name, v.LicenseNumber)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func vetService(cmd *cobra.Command) (*veterinarians.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseDSN == "" {
		return nil, nil, errNoDatabase
	}
	db, err := pg.Open(cmd.Context(), cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := pg.EnsureSchema(cmd.Context(), db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	svc := veterinarians.NewService(pg.NewVeterinariansRepo(db), cfg.DefaultVeterinarianID)
	return svc, func() { _ = db.Close() }, nil
}
