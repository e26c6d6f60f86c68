package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"adbarter/internal/core/domain"
)

// IdentityProvider resolves the caller of a request. The core trusts the
// result as given and performs no authentication itself; concrete
// providers sit behind this interface so the boundary never depends on a
// particular auth backend.
type IdentityProvider interface {
	Identify(r *http.Request) (domain.Identity, error)
}

// ErrNoIdentity is returned when a request carries no usable identity.
var ErrNoIdentity = errors.New("no identity in request")

// HeaderIdentity reads the identity asserted by an upstream gateway from
// trusted headers: X-User-Id (uuid) and X-User-Admin ("true" marks an
// administrator). It must only be used behind a proxy that strips these
// headers from client traffic.
type HeaderIdentity struct{}

func (HeaderIdentity) Identify(r *http.Request) (domain.Identity, error) {
	raw := r.Header.Get("X-User-Id")
	if raw == "" {
		return domain.Identity{}, ErrNoIdentity
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return domain.Identity{}, ErrNoIdentity
	}
	return domain.Identity{
		UserID:  id,
		IsAdmin: r.Header.Get("X-User-Admin") == "true",
	}, nil
}

type ctxKey int

const identityKey ctxKey = iota

// withIdentity resolves the caller and stores the identity in the request
// context. Requests without a usable identity get HTTP 401.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := h.identity.Identify(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) domain.Identity {
	ident, _ := r.Context().Value(identityKey).(domain.Identity)
	return ident
}
