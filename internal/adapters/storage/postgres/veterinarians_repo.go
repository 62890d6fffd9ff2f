package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"vet-consult-intake/internal/domain/veterinarians"
)

type VeterinariansRepo struct {
	db *sql.DB
}

func NewVeterinariansRepo(db *sql.DB) *VeterinariansRepo {
	return &VeterinariansRepo{db: db}
}

func (r *VeterinariansRepo) Create(ctx context.Context, v veterinarians.Veterinarian) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO veterinarians (
			id, user_id,
			name, license_number,
			created_at
		) VALUES ($1,$2,$3,$4,$5)
	`,
		v.ID,
		v.UserID,
		v.Name,
		v.LicenseNumber,
		v.CreatedAt,
	)
	return err
}

func (r *VeterinariansRepo) GetByUserID(ctx context.Context, userID string) (veterinarians.Veterinarian, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return veterinarians.Veterinarian{}, veterinarians.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, license_number, created_at
		FROM veterinarians
		WHERE user_id = $1
	`, userID)

	v, err := scanVeterinarian(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return veterinarians.Veterinarian{}, veterinarians.ErrNotFound
		}
		return veterinarians.Veterinarian{}, err
	}
	return v, nil
}

func (r *VeterinariansRepo) List(ctx context.Context) ([]veterinarians.Veterinarian, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, license_number, created_at
		FROM veterinarians
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]veterinarians.Veterinarian, 0)
	for rows.Next() {
		v, err := scanVeterinarian(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVeterinarian(s rowScanner) (veterinarians.Veterinarian, error) {
	var v veterinarians.Veterinarian
	err := s.Scan(
		&v.ID,
		&v.UserID,
		&v.Name,
		&v.LicenseNumber,
		&v.CreatedAt,
	)
	return v, err
}
