package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adbarter/internal/core/port"
	"adbarter/internal/metrics"
)

type adResponse struct {
	ID             uuid.UUID `json:"id"`
	CampaignID     uuid.UUID `json:"campaign_id"`
	AdCreativePath string    `json:"ad_creative_path"`
	TargetURL      string    `json:"target_url"`
}

type campaignResponse struct {
	ID                     uuid.UUID  `json:"id"`
	UserID                 uuid.UUID  `json:"user_id"`
	CampaignName           string     `json:"campaign_name"`
	TotalBudgetCredits     int64      `json:"total_budget_credits"`
	RemainingBudgetCredits int64      `json:"remaining_budget_credits"`
	Status                 string     `json:"status"`
	CountryID              *uuid.UUID `json:"country_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	Ad                     adResponse `json:"ad"`
}

func toCampaignResponse(cwa port.CampaignWithAd) campaignResponse {
	return campaignResponse{
		ID:                     cwa.Campaign.ID,
		UserID:                 cwa.Campaign.UserID,
		CampaignName:           cwa.Campaign.CampaignName,
		TotalBudgetCredits:     cwa.Campaign.TotalBudgetCredits,
		RemainingBudgetCredits: cwa.Campaign.RemainingBudgetCredits,
		Status:                 string(cwa.Campaign.Status),
		CountryID:              cwa.Campaign.CountryID,
		CreatedAt:              cwa.Campaign.CreatedAt,
		Ad: adResponse{
			ID:             cwa.Ad.ID,
			CampaignID:     cwa.Ad.CampaignID,
			AdCreativePath: cwa.Ad.AdCreativePath,
			TargetURL:      cwa.Ad.TargetURL,
		},
	}
}

// handleCreateCampaign debits the caller and creates a pending campaign
// with its ad. The response carries the authoritative campaign state.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CampaignName   string    `json:"campaign_name"`
		BudgetCredits  int64     `json:"budget_credits"`
		AdCreativePath string    `json:"ad_creative_path"`
		TargetURL      string    `json:"target_url"`
		CountryID      uuid.UUID `json:"country_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if body.CampaignName == "" || body.TargetURL == "" || body.CountryID == uuid.Nil {
		http.Error(w, "campaign_name, target_url and country_id are required", http.StatusBadRequest)
		return
	}
	cwa, err := h.svc.CreateCampaign(r.Context(), callerFrom(r), port.CreateCampaignReq{
		CampaignName:   body.CampaignName,
		BudgetCredits:  body.BudgetCredits,
		AdCreativePath: body.AdCreativePath,
		TargetURL:      body.TargetURL,
		CountryID:      body.CountryID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	metrics.CampaignsCreatedTotal.Inc()
	h.respondJSON(w, http.StatusCreated, toCampaignResponse(*cwa))
}

// handleMyCampaigns lists the caller's campaigns, newest first.
func (h *Handler) handleMyCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.MyCampaigns(r.Context(), callerFrom(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]campaignResponse, 0, len(list))
	for _, cwa := range list {
		out = append(out, toCampaignResponse(cwa))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleCancelCampaign withdraws the caller's own pending campaign,
// refunding the full budget.
func (h *Handler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.svc.CancelCampaign(r.Context(), callerFrom(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	metrics.CampaignDecisionsTotal.WithLabelValues("cancelled").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"refunded_credits": c.TotalBudgetCredits,
	})
}
