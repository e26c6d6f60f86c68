package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"adbarter/internal/core/domain"
)

// ExchangeRepository defines the persistence layer for the credit exchange.
// It is an outbound port in hexagonal architecture. Implementations must be
// concurrency-safe: the multi-row mutations (campaign creation, rejection,
// view settlement, account deletion) are atomic, and the two shared counters
// (profile credits, campaign remaining budget) are only ever changed through
// conditional single-row updates so concurrent callers cannot drive them
// negative or lose updates.
type ExchangeRepository interface {
	// CreateProfile inserts a new profile. Returns domain.ErrProfileExists
	// when a profile for the same user id is already present.
	CreateProfile(ctx context.Context, p *domain.Profile) error
	// GetProfile returns the profile owned by userID, or domain.ErrNotFound.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// SetProfileCountry moves the profile into a geographic partition.
	SetProfileCountry(ctx context.Context, userID, countryID uuid.UUID) error

	// CreateCampaignWithDebit atomically debits the owner's credits by the
	// campaign's total budget and inserts the campaign and its ad. Returns
	// domain.ErrInsufficientCredits when the owner's balance is too low;
	// in that case nothing is written.
	CreateCampaignWithDebit(ctx context.Context, c *domain.Campaign, ad *domain.Ad) error
	// GetCampaign returns a campaign by id, or domain.ErrNotFound.
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	// GetAd returns an ad by id, or domain.ErrNotFound.
	GetAd(ctx context.Context, id uuid.UUID) (*domain.Ad, error)
	// ListCampaignsByOwner returns all campaigns owned by userID, newest
	// first, each with its ad.
	ListCampaignsByOwner(ctx context.Context, userID uuid.UUID) ([]CampaignWithAd, error)
	// ListCampaignsByStatus returns all campaigns in the given lifecycle
	// stage, oldest first, each with its ad.
	ListCampaignsByStatus(ctx context.Context, status domain.CampaignStatus) ([]CampaignWithAd, error)

	// TransitionCampaign moves a campaign from one lifecycle stage to
	// another with a commit-time precondition: the update only applies if
	// the campaign is observed in the `from` stage. Returns
	// domain.ErrNotFound or domain.ErrInvalidState otherwise.
	TransitionCampaign(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus) error
	// DeleteCampaignWithRefund atomically credits the owner's profile with
	// the campaign's total budget and deletes the campaign and its ad.
	// The campaign must be observed in the `require` stage at commit time.
	// Returns the deleted campaign for caller messaging.
	DeleteCampaignWithRefund(ctx context.Context, id uuid.UUID, require domain.CampaignStatus) (*domain.Campaign, error)

	// SettleAdView performs the whole view-settlement transaction: verifies
	// at commit time that the ad's campaign is active with at least reward
	// credits remaining, that the viewer does not own it, and that no view
	// of the same campaign by the same viewer exists within the cooldown
	// window; then appends the ledger entry, decrements the campaign budget
	// (flipping the campaign to completed at zero) and credits the viewer.
	// Returns domain.ErrIneligible, domain.ErrBudgetExhausted or
	// domain.ErrNotFound with no partial mutation on precondition failure.
	SettleAdView(ctx context.Context, viewerID, adID uuid.UUID, reward int64, cooldown time.Duration) (*ViewReceipt, error)

	// ListEligibleAds returns the ads the viewer may currently watch,
	// applying the status, budget, country, ownership and cooldown filters.
	// When the set is empty solely because of the cooldown filter, the
	// returned set carries the earliest time at which a blocked campaign
	// becomes viewable again.
	ListEligibleAds(ctx context.Context, viewerID uuid.UUID, reward int64, cooldown time.Duration) (*EligibleSet, error)

	// DeleteAccount removes the user's profile, their campaigns with ads,
	// and every ledger entry by the user or against their campaigns, in one
	// transaction. No credits are refunded or settled.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	// CampaignStats aggregates ledger entries for a period.
	CampaignStats(ctx context.Context, req StatsReq) (*StatsResp, error)
	// ListCountries returns all known geographic partitions.
	ListCountries(ctx context.Context) ([]domain.Country, error)
}

// CampaignWithAd pairs a campaign with its single ad.
type CampaignWithAd struct {
	Campaign domain.Campaign
	Ad       domain.Ad
}

// ViewReceipt is the authoritative post-settlement state returned by
// SettleAdView for the UI to reconcile optimistic counters against.
type ViewReceipt struct {
	View              domain.AdView
	ViewerCredits     int64
	RemainingBudget   int64
	CampaignCompleted bool
}

// EligibleSet is the result of an eligibility query. Ads is finite and
// recomputed per call. CooldownEndsAt is set only when Ads is empty and at
// least one campaign would be eligible absent the cooldown filter.
type EligibleSet struct {
	Ads            []CampaignWithAd
	CooldownEndsAt *time.Time
}

// StatsReq selects the ledger slice to aggregate. When CampaignID is nil
// the stats cover all campaigns.
type StatsReq struct {
	From       time.Time
	To         time.Time
	CampaignID *uuid.UUID
}

// StatsResp contains aggregated ledger totals: the number of recorded
// views and the credits paid out to viewers for them.
type StatsResp struct {
	Views       int64
	CreditsPaid int64
}
