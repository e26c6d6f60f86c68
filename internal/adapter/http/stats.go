package httpadapter

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"adbarter/internal/core/port"
)

// handleStatsOverview returns aggregated view-ledger totals for a period.
// It accepts optional `from`, `to` (RFC3339 timestamps) and `campaign_id`
// query parameters. Without a period it defaults to the last 24 hours.
// Admins may query across all campaigns; other callers must name one of
// their own.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	var (
		q       = r.URL.Query()
		fromStr = q.Get("from")
		toStr   = q.Get("to")
		req     port.StatsReq
		err     error
	)

	if fromStr != "" {
		req.From, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			http.Error(w, "invalid 'from' timestamp", http.StatusBadRequest)
			return
		}
	} else {
		req.From = time.Now().Add(-24 * time.Hour)
	}

	if toStr != "" {
		req.To, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			http.Error(w, "invalid 'to' timestamp", http.StatusBadRequest)
			return
		}
	} else {
		req.To = time.Now()
	}

	if cid := q.Get("campaign_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			http.Error(w, "invalid campaign_id", http.StatusBadRequest)
			return
		}
		req.CampaignID = &id
	}

	stats, err := h.svc.CampaignStats(r.Context(), callerFrom(r), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"views":        stats.Views,
		"credits_paid": stats.CreditsPaid,
	})
}
