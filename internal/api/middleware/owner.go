package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
)

// OwnerHeader carries the tenant every /api request acts for.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// Owner returns middleware that rejects requests without an owner header
// and stores the owner in the request context.
func Owner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
			if owner == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(dto.MissingOwnerError(OwnerHeader))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// WithOwner returns a copy of ctx carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner stored by Owner, or "".
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}
