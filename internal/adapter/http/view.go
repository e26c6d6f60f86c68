package httpadapter

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adbarter/internal/core/domain"
	"adbarter/internal/metrics"
)

type adOfferResponse struct {
	Ad             *adResponse `json:"ad,omitempty"`
	CampaignID     uuid.UUID   `json:"campaign_id,omitempty"`
	CampaignName   string      `json:"campaign_name,omitempty"`
	RewardCredits  int64       `json:"reward_credits"`
	DwellSeconds   int         `json:"dwell_seconds"`
	CooldownEndsAt *time.Time  `json:"cooldown_ends_at,omitempty"`
}

// handleNextAd draws a random eligible ad for the caller. When nothing is
// available the body still carries the reward constants and, if the block
// is due to cooldown, the time it resolves — the UI shows a countdown.
func (h *Handler) handleNextAd(w http.ResponseWriter, r *http.Request) {
	offer, err := h.svc.NextAd(r.Context(), callerFrom(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := adOfferResponse{
		RewardCredits:  offer.RewardCredits,
		DwellSeconds:   offer.DwellSeconds,
		CooldownEndsAt: offer.CooldownEndsAt,
	}
	if offer.Ad != nil {
		resp.Ad = &adResponse{
			ID:             offer.Ad.ID,
			CampaignID:     offer.Ad.CampaignID,
			AdCreativePath: offer.Ad.AdCreativePath,
			TargetURL:      offer.Ad.TargetURL,
		}
		resp.CampaignID = offer.CampaignID
		resp.CampaignName = offer.CampaignName
	}
	h.respondJSON(w, http.StatusOK, resp)
}

type viewReceiptResponse struct {
	ViewID            uuid.UUID `json:"view_id"`
	CreditsEarned     int64     `json:"credits_earned"`
	ViewerCredits     int64     `json:"viewer_credits"`
	RemainingBudget   int64     `json:"remaining_budget"`
	CampaignCompleted bool      `json:"campaign_completed"`
	ViewedAt          time.Time `json:"viewed_at"`
}

// handleClaimView settles a rewarded view after the client-side dwell
// timer ran out. The settlement re-checks all preconditions at commit
// time; the dwell timer is pacing, not authorization.
func (h *Handler) handleClaimView(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid ad id", http.StatusBadRequest)
		return
	}
	start := time.Now()
	receipt, err := h.svc.ClaimView(r.Context(), callerFrom(r), adID)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBudgetExhausted):
			metrics.RecordViewSettle("exhausted", elapsed)
		case errors.Is(err, domain.ErrIneligible):
			metrics.RecordViewSettle("ineligible", elapsed)
		case errors.Is(err, domain.ErrConcurrencyConflict):
			metrics.RecordViewSettle("conflict", elapsed)
		default:
			metrics.RecordViewSettle("error", elapsed)
		}
		h.respondError(w, r, err)
		return
	}
	metrics.RecordViewSettle("success", elapsed)
	metrics.CreditsPaidTotal.Add(float64(receipt.View.CreditsEarned))
	h.respondJSON(w, http.StatusOK, viewReceiptResponse{
		ViewID:            receipt.View.ID,
		CreditsEarned:     receipt.View.CreditsEarned,
		ViewerCredits:     receipt.ViewerCredits,
		RemainingBudget:   receipt.RemainingBudget,
		CampaignCompleted: receipt.CampaignCompleted,
		ViewedAt:          receipt.View.ViewedAt,
	})
}
