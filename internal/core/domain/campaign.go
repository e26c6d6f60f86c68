package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle stage of a campaign.
type CampaignStatus string

const (
	// StatusPendingApproval is the initial stage; the budget is already
	// debited from the owner but no ad views can be served yet.
	StatusPendingApproval CampaignStatus = "pending_approval"
	// StatusActive means the campaign was approved and serves ads.
	StatusActive CampaignStatus = "active"
	// StatusCompleted is reached when the remaining budget hits zero.
	StatusCompleted CampaignStatus = "completed"
)

// Campaign represents a funded request to have an ad shown to viewers.
// Budgets are stored in whole credits. At all times
// 0 <= RemainingBudgetCredits <= TotalBudgetCredits.
type Campaign struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	CampaignName           string
	TotalBudgetCredits     int64
	RemainingBudgetCredits int64
	Status                 CampaignStatus
	CountryID              *uuid.UUID
	CreatedAt              time.Time
}
