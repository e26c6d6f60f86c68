package usecase

import (
	"context"
	"math/rand"

	"github.com/google/uuid"

	"adbarter/internal/config/configs"
	"adbarter/internal/core/domain"
	"adbarter/internal/core/port"
)

// Exchange implements the campaign lifecycle engine and the eligibility
// resolver on top of an ExchangeRepository. It holds the economic
// constants passed in at construction and keeps no other state; identity
// is supplied per call, never read from ambient globals.
type Exchange struct {
	repo port.ExchangeRepository
	cfg  configs.Exchange
}

// NewExchange creates the usecase with the provided repository and
// exchange constants.
func NewExchange(repo port.ExchangeRepository, cfg configs.Exchange) *Exchange {
	return &Exchange{repo: repo, cfg: cfg}
}

var _ port.ExchangeUseCase = (*Exchange)(nil)

// Register creates a profile with the signup bonus.
func (e *Exchange) Register(ctx context.Context, userID uuid.UUID, countryID *uuid.UUID) (*domain.Profile, error) {
	p := &domain.Profile{
		UserID:    userID,
		Credits:   e.cfg.SignupBonusCredits,
		CountryID: countryID,
	}
	if err := e.repo.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile returns the caller's profile.
func (e *Exchange) GetProfile(ctx context.Context, caller domain.Identity) (*domain.Profile, error) {
	return e.repo.GetProfile(ctx, caller.UserID)
}

// SetCountry moves the caller into a geographic partition.
func (e *Exchange) SetCountry(ctx context.Context, caller domain.Identity, countryID uuid.UUID) error {
	return e.repo.SetProfileCountry(ctx, caller.UserID, countryID)
}

// CreateCampaign validates the budget, then delegates the atomic
// debit-and-insert to the repository.
func (e *Exchange) CreateCampaign(ctx context.Context, caller domain.Identity, req port.CreateCampaignReq) (*port.CampaignWithAd, error) {
	if req.BudgetCredits <= 0 {
		return nil, domain.ErrInvalidBudget
	}
	countryID := req.CountryID
	c := domain.Campaign{
		UserID:             caller.UserID,
		CampaignName:       req.CampaignName,
		TotalBudgetCredits: req.BudgetCredits,
		Status:             domain.StatusPendingApproval,
		CountryID:          &countryID,
	}
	ad := domain.Ad{
		AdCreativePath: req.AdCreativePath,
		TargetURL:      req.TargetURL,
	}
	if err := e.repo.CreateCampaignWithDebit(ctx, &c, &ad); err != nil {
		return nil, err
	}
	return &port.CampaignWithAd{Campaign: c, Ad: ad}, nil
}

// MyCampaigns lists the caller's campaigns.
func (e *Exchange) MyCampaigns(ctx context.Context, caller domain.Identity) ([]port.CampaignWithAd, error) {
	return e.repo.ListCampaignsByOwner(ctx, caller.UserID)
}

// CancelCampaign lets the owner withdraw a campaign that has not been
// approved yet, refunding the full budget.
func (e *Exchange) CancelCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) (*domain.Campaign, error) {
	c, err := e.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.UserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	// stage is re-checked at commit time inside the delete
	return e.repo.DeleteCampaignWithRefund(ctx, campaignID, domain.StatusPendingApproval)
}

// PendingCampaigns lists campaigns awaiting approval. Admin only.
func (e *Exchange) PendingCampaigns(ctx context.Context, caller domain.Identity) ([]port.CampaignWithAd, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return e.repo.ListCampaignsByStatus(ctx, domain.StatusPendingApproval)
}

// ApproveCampaign transitions a pending campaign to active. Admin only.
func (e *Exchange) ApproveCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) error {
	if !caller.IsAdmin {
		return domain.ErrForbidden
	}
	return e.repo.TransitionCampaign(ctx, campaignID, domain.StatusPendingApproval, domain.StatusActive)
}

// RejectCampaign refunds and deletes a pending campaign. Admin only.
func (e *Exchange) RejectCampaign(ctx context.Context, caller domain.Identity, campaignID uuid.UUID) (*domain.Campaign, error) {
	if !caller.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return e.repo.DeleteCampaignWithRefund(ctx, campaignID, domain.StatusPendingApproval)
}

// NextAd draws a uniformly random ad from the caller's eligible set. Each
// call redraws independently, so "load a different ad" may repeat the
// previous pick.
func (e *Exchange) NextAd(ctx context.Context, caller domain.Identity) (*port.AdOffer, error) {
	set, err := e.repo.ListEligibleAds(ctx, caller.UserID, e.cfg.ViewRewardCredits, e.cfg.Cooldown)
	if err != nil {
		return nil, err
	}
	offer := &port.AdOffer{
		RewardCredits: e.cfg.ViewRewardCredits,
		DwellSeconds:  e.cfg.DwellSeconds,
	}
	if len(set.Ads) == 0 {
		offer.CooldownEndsAt = set.CooldownEndsAt
		return offer, nil
	}
	pick := set.Ads[rand.Intn(len(set.Ads))]
	ad := pick.Ad
	offer.Ad = &ad
	offer.CampaignID = pick.Campaign.ID
	offer.CampaignName = pick.Campaign.CampaignName
	return offer, nil
}

// ClaimView settles a rewarded view through the repository's atomic
// transaction. Dwell-time gating happens in the UI; the commit-time
// preconditions here are the only correctness guarantees.
func (e *Exchange) ClaimView(ctx context.Context, caller domain.Identity, adID uuid.UUID) (*port.ViewReceipt, error) {
	return e.repo.SettleAdView(ctx, caller.UserID, adID, e.cfg.ViewRewardCredits, e.cfg.Cooldown)
}

// DeleteAccount removes the caller's data without settling credits.
func (e *Exchange) DeleteAccount(ctx context.Context, caller domain.Identity) error {
	return e.repo.DeleteAccount(ctx, caller.UserID)
}

// CampaignStats aggregates the view ledger. Admins may query anything;
// other callers only their own campaigns.
func (e *Exchange) CampaignStats(ctx context.Context, caller domain.Identity, req port.StatsReq) (*port.StatsResp, error) {
	if !caller.IsAdmin {
		if req.CampaignID == nil {
			return nil, domain.ErrForbidden
		}
		c, err := e.repo.GetCampaign(ctx, *req.CampaignID)
		if err != nil {
			return nil, err
		}
		if c.UserID != caller.UserID {
			return nil, domain.ErrForbidden
		}
	}
	return e.repo.CampaignStats(ctx, req)
}

// Countries lists the available geographic partitions.
func (e *Exchange) Countries(ctx context.Context) ([]domain.Country, error) {
	return e.repo.ListCountries(ctx)
}
