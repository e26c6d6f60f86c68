package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"adbarter/internal/metrics"
)

// handlePendingCampaigns lists campaigns awaiting approval. Admin only;
// the usecase enforces it.
func (h *Handler) handlePendingCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.PendingCampaigns(r.Context(), callerFrom(r))
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

// handleApprove activates a pending campaign.
func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	if err = h.svc.ApproveCampaign(r.Context(), callerFrom(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	metrics.CampaignDecisionsTotal.WithLabelValues("approved").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// handleReject refunds and deletes a pending campaign.
func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	c, err := h.svc.RejectCampaign(r.Context(), callerFrom(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	metrics.CampaignDecisionsTotal.WithLabelValues("rejected").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"refunded_credits": c.TotalBudgetCredits,
	})
}
