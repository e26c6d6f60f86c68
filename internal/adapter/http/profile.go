package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"adbarter/internal/core/domain"
)

type profileResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Credits   int64      `json:"credits"`
	CountryID *uuid.UUID `json:"country_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toProfileResponse(p *domain.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Credits:   p.Credits,
		CountryID: p.CountryID,
		CreatedAt: p.CreatedAt,
	}
}

// handleRegister creates a profile for the caller, granting the signup
// bonus. The identity provider has already authenticated the user; this
// only creates the exchange-side record.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CountryID *uuid.UUID `json:"country_id"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	caller := callerFrom(r)
	p, err := h.svc.Register(r.Context(), caller.UserID, body.CountryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toProfileResponse(p))
}

// handleGetProfile returns the caller's profile with the authoritative
// credit balance for the UI to reconcile against.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), callerFrom(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toProfileResponse(p))
}

// handleSetCountry moves the caller's profile into a geographic partition.
func (h *Handler) handleSetCountry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CountryID uuid.UUID `json:"country_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CountryID == uuid.Nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.SetCountry(r.Context(), callerFrom(r), body.CountryID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAccount removes the caller's profile, campaigns and ledger
// entries. Irreversible; credits are not settled anywhere.
func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), callerFrom(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCountries lists the available geographic partitions.
func (h *Handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.Countries(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	type countryResponse struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
		Code string    `json:"code"`
	}
	out := make([]countryResponse, 0, len(countries))
	for _, c := range countries {
		out = append(out, countryResponse{ID: c.ID, Name: c.Name, Code: c.Code})
	}
	h.respondJSON(w, http.StatusOK, out)
}
