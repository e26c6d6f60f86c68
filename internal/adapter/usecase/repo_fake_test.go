package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"adbarter/internal/core/domain"
	"adbarter/internal/core/port"
)

// fakeRepo is an in-memory ExchangeRepository. A single mutex held across
// every check-and-mutate sequence stands in for the database transaction,
// so the concurrency tests exercise the same all-or-nothing semantics the
// real store provides.
type fakeRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*domain.Profile // keyed by user id
	campaigns map[uuid.UUID]*domain.Campaign
	ads       map[uuid.UUID]*domain.Ad
	views     []domain.AdView
	countries map[uuid.UUID]domain.Country
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  make(map[uuid.UUID]*domain.Profile),
		campaigns: make(map[uuid.UUID]*domain.Campaign),
		ads:       make(map[uuid.UUID]*domain.Ad),
		countries: make(map[uuid.UUID]domain.Country),
	}
}

var _ port.ExchangeRepository = (*fakeRepo)(nil)

// totalCredits sums all profile balances and campaign remaining budgets.
// Used by the conservation tests.
func (f *fakeRepo) totalCredits() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, p := range f.profiles {
		sum += p.Credits
	}
	for _, c := range f.campaigns {
		sum += c.RemainingBudgetCredits
	}
	return sum
}

func (f *fakeRepo) addCountry(name, code string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Country{ID: uuid.New(), Name: name, Code: code}
	f.countries[c.ID] = c
	return c.ID
}

func (f *fakeRepo) CreateProfile(_ context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; ok {
		return domain.ErrProfileExists
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeRepo) GetProfile(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) SetProfileCountry(_ context.Context, userID, countryID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	id := countryID
	p.CountryID = &id
	return nil
}

func (f *fakeRepo) CreateCampaignWithDebit(_ context.Context, c *domain.Campaign, ad *domain.Ad) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[c.UserID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Credits < c.TotalBudgetCredits {
		return domain.ErrInsufficientCredits
	}
	p.Credits -= c.TotalBudgetCredits
	c.ID = uuid.New()
	c.RemainingBudgetCredits = c.TotalBudgetCredits
	c.CreatedAt = time.Now()
	cc := *c
	f.campaigns[c.ID] = &cc
	ad.ID = uuid.New()
	ad.CampaignID = c.ID
	ad.CreatedAt = c.CreatedAt
	ac := *ad
	f.ads[ad.ID] = &ac
	return nil
}

func (f *fakeRepo) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) GetAd(_ context.Context, id uuid.UUID) (*domain.Ad, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.ads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) adForCampaign(campaignID uuid.UUID) *domain.Ad {
	for _, a := range f.ads {
		if a.CampaignID == campaignID {
			return a
		}
	}
	return nil
}

func (f *fakeRepo) ListCampaignsByOwner(_ context.Context, userID uuid.UUID) ([]port.CampaignWithAd, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []port.CampaignWithAd
	for _, c := range f.campaigns {
		if c.UserID == userID {
			out = append(out, port.CampaignWithAd{Campaign: *c, Ad: *f.adForCampaign(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Campaign.CreatedAt.After(out[j].Campaign.CreatedAt)
	})
	return out, nil
}

func (f *fakeRepo) ListCampaignsByStatus(_ context.Context, status domain.CampaignStatus) ([]port.CampaignWithAd, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []port.CampaignWithAd
	for _, c := range f.campaigns {
		if c.Status == status {
			out = append(out, port.CampaignWithAd{Campaign: *c, Ad: *f.adForCampaign(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Campaign.CreatedAt.Before(out[j].Campaign.CreatedAt)
	})
	return out, nil
}

func (f *fakeRepo) TransitionCampaign(_ context.Context, id uuid.UUID, from, to domain.CampaignStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Status != from {
		return domain.ErrInvalidState
	}
	c.Status = to
	return nil
}

func (f *fakeRepo) DeleteCampaignWithRefund(_ context.Context, id uuid.UUID, require domain.CampaignStatus) (*domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Status != require {
		return nil, domain.ErrInvalidState
	}
	owner, ok := f.profiles[c.UserID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	owner.Credits += c.TotalBudgetCredits
	if ad := f.adForCampaign(id); ad != nil {
		delete(f.ads, ad.ID)
	}
	delete(f.campaigns, id)
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) SettleAdView(_ context.Context, viewerID, adID uuid.UUID, reward int64, cooldown time.Duration) (*port.ViewReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ad, ok := f.ads[adID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := f.campaigns[ad.CampaignID]
	if c.UserID == viewerID {
		return nil, domain.ErrIneligible
	}
	// budget before status, matching the store: a drained campaign
	// reports exhaustion rather than generic ineligibility
	if c.RemainingBudgetCredits < reward {
		return nil, domain.ErrBudgetExhausted
	}
	if c.Status != domain.StatusActive {
		return nil, domain.ErrIneligible
	}
	cutoff := time.Now().Add(-cooldown)
	for _, v := range f.views {
		if v.UserID == viewerID && v.CampaignID == c.ID && v.ViewedAt.After(cutoff) {
			return nil, domain.ErrIneligible
		}
	}
	viewer, ok := f.profiles[viewerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.RemainingBudgetCredits -= reward
	if c.RemainingBudgetCredits == 0 {
		c.Status = domain.StatusCompleted
	}
	viewer.Credits += reward
	view := domain.AdView{
		ID:            uuid.New(),
		UserID:        viewerID,
		AdID:          adID,
		CampaignID:    c.ID,
		CreditsEarned: reward,
		ViewedAt:      time.Now(),
	}
	f.views = append(f.views, view)
	return &port.ViewReceipt{
		View:              view,
		ViewerCredits:     viewer.Credits,
		RemainingBudget:   c.RemainingBudgetCredits,
		CampaignCompleted: c.Status == domain.StatusCompleted,
	}, nil
}

func (f *fakeRepo) ListEligibleAds(_ context.Context, viewerID uuid.UUID, reward int64, cooldown time.Duration) (*port.EligibleSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := &port.EligibleSet{}
	viewer, ok := f.profiles[viewerID]
	if !ok || viewer.CountryID == nil {
		return set, nil
	}
	cutoff := time.Now().Add(-cooldown)
	var earliest *time.Time
	for _, c := range f.campaigns {
		if c.Status != domain.StatusActive || c.RemainingBudgetCredits < reward {
			continue
		}
		if c.CountryID == nil || *c.CountryID != *viewer.CountryID || c.UserID == viewerID {
			continue
		}
		var lastView *time.Time
		for _, v := range f.views {
			if v.UserID == viewerID && v.CampaignID == c.ID && v.ViewedAt.After(cutoff) {
				t := v.ViewedAt
				if lastView == nil || t.After(*lastView) {
					lastView = &t
				}
			}
		}
		if lastView != nil {
			if earliest == nil || lastView.Before(*earliest) {
				earliest = lastView
			}
			continue
		}
		set.Ads = append(set.Ads, port.CampaignWithAd{Campaign: *c, Ad: *f.adForCampaign(c.ID)})
	}
	if len(set.Ads) == 0 && earliest != nil {
		ends := earliest.Add(cooldown)
		set.CooldownEndsAt = &ends
	}
	return set, nil
}

func (f *fakeRepo) DeleteAccount(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; !ok {
		return domain.ErrNotFound
	}
	owned := make(map[uuid.UUID]bool)
	for id, c := range f.campaigns {
		if c.UserID == userID {
			owned[id] = true
			if ad := f.adForCampaign(id); ad != nil {
				delete(f.ads, ad.ID)
			}
			delete(f.campaigns, id)
		}
	}
	kept := f.views[:0]
	for _, v := range f.views {
		if v.UserID != userID && !owned[v.CampaignID] {
			kept = append(kept, v)
		}
	}
	f.views = kept
	delete(f.profiles, userID)
	return nil
}

func (f *fakeRepo) CampaignStats(_ context.Context, req port.StatsReq) (*port.StatsResp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var resp port.StatsResp
	for _, v := range f.views {
		if v.ViewedAt.Before(req.From) || v.ViewedAt.After(req.To) {
			continue
		}
		if req.CampaignID != nil && v.CampaignID != *req.CampaignID {
			continue
		}
		resp.Views++
		resp.CreditsPaid += v.CreditsEarned
	}
	return &resp, nil
}

func (f *fakeRepo) ListCountries(_ context.Context) ([]domain.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Country, 0, len(f.countries))
	for _, c := range f.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
