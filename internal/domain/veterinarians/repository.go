package veterinarians

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("veterinarian not found")

type Repository interface {
	Create(ctx context.Context, v Veterinarian) error
	GetByUserID(ctx context.Context, userID string) (Veterinarian, error)
	List(ctx context.Context) ([]Veterinarian, error)
}
