package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adbarter/internal/core/domain"
)

// ExchangeUseCase defines the business operations exposed by the credit
// exchange core. This interface is the primary port into the application
// domain; the HTTP layer and any other collaborator call through it and
// never mutate credits or budgets directly. Every operation is a single
// request/commit unit: on error, no partial mutation is visible.
type ExchangeUseCase interface {
	// Register creates a profile for a new user, granting the configured
	// signup bonus. countryID may be nil; without a country the user sees
	// no ads until one is set.
	Register(ctx context.Context, userID uuid.UUID, countryID *uuid.UUID) (*domain.Profile, error)
	// GetProfile returns the caller's profile with the authoritative
	// credit balance.
	GetProfile(ctx context.Context, caller domain.Identity) (*domain.Profile, error)
	// SetCountry moves the caller's profile into a geographic partition.
	SetCountry(ctx context.Context, caller domain.Identity, countryID uuid.UUID) error

	// CreateCampaign debits the caller's credits by budget and creates a
	// pending-approval campaign with one ad. Fails with
	// domain.ErrInvalidBudget or domain.ErrInsufficientCredits.
	CreateCampaign(ctx context.Context, caller domain.Identity, req CreateCampaignReq) (*CampaignWithAd, error)
	// MyCampaigns lists the caller's campaigns, newest first.
	MyCampaigns(ctx context.Context, caller domain.Identity) ([]CampaignWithAd, error)
	// CancelCampaign deletes the caller's own pending campaign, refunding
	// its full budget. Fails with domain.ErrForbidden for non-owners and
	// domain.ErrInvalidState once the campaign left pending approval.
	CancelCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) (*domain.Campaign, error)

	// PendingCampaigns lists campaigns awaiting approval. Admin only.
	PendingCampaigns(ctx context.Context, caller domain.Identity) ([]CampaignWithAd, error)
	// ApproveCampaign transitions a pending campaign to active. Admin only.
	ApproveCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) error
	// RejectCampaign refunds and deletes a pending campaign. Admin only.
	RejectCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) (*domain.Campaign, error)

	// NextAd draws a uniformly random ad from the caller's eligible set.
	// The returned offer carries a nil Ad when nothing is available; in
	// that case CooldownEndsAt may hold the time the earliest blocked
	// campaign becomes viewable again. Redrawing is independent: a
	// repeated call may return the same ad.
	NextAd(ctx context.Context, caller domain.Identity) (*AdOffer, error)
	// ClaimView records that the caller viewed the ad and settles credits:
	// ledger append, campaign budget decrement and viewer credit in one
	// atomic transaction. Fails with domain.ErrIneligible or
	// domain.ErrBudgetExhausted.
	ClaimView(ctx context.Context, caller domain.Identity, adID uuid.UUID) (*ViewReceipt, error)

	// DeleteAccount removes the caller's profile, campaigns and ledger
	// entries. Credits are not refunded or settled anywhere.
	DeleteAccount(ctx context.Context, caller domain.Identity) error

	// CampaignStats aggregates the view ledger for a period. Admin only
	// unless the caller owns the requested campaign.
	CampaignStats(ctx context.Context, caller domain.Identity, req StatsReq) (*StatsResp, error)
	// Countries lists the available geographic partitions.
	Countries(ctx context.Context) ([]domain.Country, error)
}

// CreateCampaignReq carries the inputs for campaign creation.
type CreateCampaignReq struct {
	CampaignName   string
	BudgetCredits  int64
	AdCreativePath string
	TargetURL      string
	CountryID      uuid.UUID
}

// AdOffer is the ad selected for the caller to view, with the dwell time
// the UI should enforce before enabling the claim action. DwellSeconds is
// UX pacing only; the core never trusts it for correctness. Ad is nil when
// no ad is currently available.
type AdOffer struct {
	Ad             *domain.Ad
	CampaignID     uuid.UUID
	CampaignName   string
	RewardCredits  int64
	DwellSeconds   int
	CooldownEndsAt *time.Time
}
