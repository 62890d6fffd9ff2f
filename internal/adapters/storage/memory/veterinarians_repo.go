package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-consult-intake/internal/domain/veterinarians"
)

type veterinarianRepo struct {
	mu     sync.RWMutex
	byUser map[string]veterinarians.Veterinarian
}

// NewVeterinarianRepo arranca con seed (útil en modo dev).
func NewVeterinarianRepo(seed ...veterinarians.Veterinarian) veterinarians.Repository {
	r := &veterinarianRepo{
		byUser: make(map[string]veterinarians.Veterinarian),
	}
	for _, v := range seed {
		r.byUser[v.UserID] = v
	}
	return r
}

func (r *veterinarianRepo) Create(ctx context.Context, v veterinarians.Veterinarian) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(v.ID) == "" || strings.TrimSpace(v.UserID) == "" {
		return errors.New("veterinarian id and user id required")
	}
	if _, exists := r.byUser[v.UserID]; exists {
		return errors.New("veterinarian already exists for user")
	}
	for _, other := range r.byUser {
		if other.ID == v.ID {
			return errors.New("veterinarian id already exists")
		}
	}
	r.byUser[v.UserID] = v
	return nil
}

func (r *veterinarianRepo) GetByUserID(ctx context.Context, userID string) (veterinarians.Veterinarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byUser[userID]
	if !ok {
		return veterinarians.Veterinarian{}, veterinarians.ErrNotFound
	}
	return v, nil
}

func (r *veterinarianRepo) List(ctx context.Context) ([]veterinarians.Veterinarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]veterinarians.Veterinarian, 0, len(r.byUser))
	for _, v := range r.byUser {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
