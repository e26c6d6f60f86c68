package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ad is the creative attached to a campaign. Exactly one ad per campaign
// in this design; it is created and deleted together with the campaign.
type Ad struct {
	ID             uuid.UUID
	CampaignID     uuid.UUID
	AdCreativePath string
	TargetURL      string
	CreatedAt      time.Time
}

// AdView is a ledger entry recording that a user viewed an ad and earned
// credits for it. The ledger is append-only and is the sole source of
// truth for cooldown computation.
type AdView struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AdID          uuid.UUID
	CampaignID    uuid.UUID
	CreditsEarned int64
	ViewedAt      time.Time
}
