package middleware

import (
	"context"
	"net/http"

	"vet-consult-intake/internal/domain/veterinarians"
	"vet-consult-intake/internal/platform/logger"
)

const identityKey ctxKey = "identity"

// Identity resuelve el veterinarian_id una vez por request, después de AuthContext.
func Identity(svc *veterinarians.Service, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string
			if c, ok := GetClaims(r.Context()); ok {
				userID = c.UserID
			}

			id, err := svc.Resolve(r.Context(), userID, claimsSource(r.Context()))
			if err != nil {
				log.Error("veterinarian identity unavailable", map[string]any{
					"error":   err,
					"user_id": userID,
				})
				http.Error(w, "veterinarian identity unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (veterinarians.Identity, bool) {
	id, ok := ctx.Value(identityKey).(veterinarians.Identity)
	return id, ok
}
