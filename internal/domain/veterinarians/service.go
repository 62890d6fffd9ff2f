package veterinarians

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo      Repository
	defaultID string
	now       func() time.Time
}

// NewService: defaultID se usa cuando el request no trae identidad (modo dev).
func NewService(repo Repository, defaultID string) *Service {
	return &Service{
		repo:      repo,
		defaultID: strings.TrimSpace(defaultID),
		now:       time.Now,
	}
}

// Resolve convierte un user id autenticado en la identidad de veterinario.
// Sin registro, el user id es el veterinarian_id. Sin user id, se usa el default.
func (s *Service) Resolve(ctx context.Context, userID string, src Source) (Identity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		if s.defaultID == "" {
			return Identity{}, fmt.Errorf("%w: no identity and no default veterinarian", ErrInvalidInput)
		}
		return Identity{VeterinarianID: s.defaultID, Source: SourceDefault}, nil
	}

	v, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return Identity{VeterinarianID: v.ID, UserID: userID, Source: src}, nil
	case errors.Is(err, ErrNotFound):
		return Identity{VeterinarianID: userID, UserID: userID, Source: src}, nil
	default:
		return Identity{}, fmt.Errorf("lookup veterinarian: %w", err)
	}
}

type RegisterInput struct {
	ID            string // opcional, uuid si viene vacío
	UserID        string
	Name          string
	LicenseNumber string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Veterinarian, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Veterinarian{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Veterinarian{}, ErrInvalidInput
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	v := Veterinarian{
		ID:            id,
		UserID:        strings.TrimSpace(in.UserID),
		Name:          strings.TrimSpace(in.Name),
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return Veterinarian{}, err
	}
	return v, nil
}

func (s *Service) List(ctx context.Context) ([]Veterinarian, error) {
	return s.repo.List(ctx)
}
