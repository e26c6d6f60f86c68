package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"adbarter/internal/core/domain"
	"adbarter/internal/core/port"
)

// Store access is bounded: every operation runs under this timeout and
// reports domain.ErrStoreUnavailable when it expires.
const opTimeout = 5 * time.Second

// settleRetries bounds the number of serialization-failure retries for the
// view settlement transaction before giving up with ErrConcurrencyConflict.
const settleRetries = 3

// ExchangeRepository implements port.ExchangeRepository using pgxpool for
// PostgreSQL. All multi-row mutations run inside a single transaction and
// the shared counters (profile credits, campaign remaining budget) are only
// changed through conditional updates, so a failed precondition leaves no
// partial state.
type ExchangeRepository struct {
	pool *pgxpool.Pool
}

// NewExchangeRepository returns a new repository instance.
func NewExchangeRepository(pool *pgxpool.Pool) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

// mapError translates driver failures into domain errors. Serialization and
// deadlock failures become ErrConcurrencyConflict; timeouts and cancelled
// contexts become ErrStoreUnavailable. Unique violations pass through so
// call sites can interpret them.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return domain.ErrStoreUnavailable
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// CreateProfile inserts a new profile row.
func (r *ExchangeRepository) CreateProfile(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	err := r.pool.QueryRow(ctx, `INSERT INTO profiles (user_id, credits, country_id) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`, p.UserID, p.Credits, p.CountryID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrProfileExists
	}
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return mapError(err)
}

// GetProfile returns the profile owned by userID.
func (r *ExchangeRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var p domain.Profile
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, credits, country_id, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.ID, &p.UserID, &p.Credits, &p.CountryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// SetProfileCountry moves the profile into a geographic partition.
func (r *ExchangeRepository) SetProfileCountry(ctx context.Context, userID, countryID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET country_id = $1, updated_at = now() WHERE user_id = $2`,
		countryID, userID)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateCampaignWithDebit debits the owner and inserts campaign plus ad in
// one transaction. The debit is a conditional update so a concurrent spend
// cannot drive the balance negative.
func (r *ExchangeRepository) CreateCampaignWithDebit(ctx context.Context, c *domain.Campaign, ad *domain.Ad) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE profiles SET credits = credits - $1, updated_at = now()
		WHERE user_id = $2 AND credits >= $1`, c.TotalBudgetCredits, c.UserID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		// distinguish a missing profile from a short balance
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1)`, c.UserID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientCredits
	}

	err = tx.QueryRow(ctx, `INSERT INTO campaigns
		(user_id, campaign_name, total_budget_credits, remaining_budget_credits, status, country_id)
		VALUES ($1, $2, $3, $3, $4, $5)
		RETURNING id, created_at`,
		c.UserID, c.CampaignName, c.TotalBudgetCredits, c.Status, c.CountryID).
		Scan(&c.ID, &c.CreatedAt)
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return mapError(err)
	}
	c.RemainingBudgetCredits = c.TotalBudgetCredits

	ad.CampaignID = c.ID
	err = tx.QueryRow(ctx, `INSERT INTO ads (campaign_id, ad_creative_path, target_url)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		ad.CampaignID, ad.AdCreativePath, ad.TargetURL).
		Scan(&ad.ID, &ad.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit(ctx))
}

// GetCampaign returns a campaign by id.
func (r *ExchangeRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, campaign_name, total_budget_credits,
		remaining_budget_credits, status, country_id, created_at
		FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.UserID, &c.CampaignName, &c.TotalBudgetCredits,
			&c.RemainingBudgetCredits, &c.Status, &c.CountryID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// GetAd returns an ad by id.
func (r *ExchangeRepository) GetAd(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var a domain.Ad
	err := r.pool.QueryRow(ctx, `SELECT id, campaign_id, ad_creative_path, target_url, created_at
		FROM ads WHERE id = $1`, id).
		Scan(&a.ID, &a.CampaignID, &a.AdCreativePath, &a.TargetURL, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

const campaignWithAdColumns = `
	c.id, c.user_id, c.campaign_name, c.total_budget_credits,
	c.remaining_budget_credits, c.status, c.country_id, c.created_at,
	a.id, a.campaign_id, a.ad_creative_path, a.target_url, a.created_at`

func scanCampaignWithAd(row pgx.CollectableRow) (port.CampaignWithAd, error) {
	var cwa port.CampaignWithAd
	err := row.Scan(
		&cwa.Campaign.ID,
		&cwa.Campaign.UserID,
		&cwa.Campaign.CampaignName,
		&cwa.Campaign.TotalBudgetCredits,
		&cwa.Campaign.RemainingBudgetCredits,
		&cwa.Campaign.Status,
		&cwa.Campaign.CountryID,
		&cwa.Campaign.CreatedAt,
		&cwa.Ad.ID,
		&cwa.Ad.CampaignID,
		&cwa.Ad.AdCreativePath,
		&cwa.Ad.TargetURL,
		&cwa.Ad.CreatedAt,
	)
	return cwa, err
}

// ListCampaignsByOwner returns all campaigns owned by userID, newest first.
func (r *ExchangeRepository) ListCampaignsByOwner(ctx context.Context, userID uuid.UUID) ([]port.CampaignWithAd, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, `SELECT `+campaignWithAdColumns+`
		FROM campaigns c JOIN ads a ON a.campaign_id = c.id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, scanCampaignWithAd)
	return out, mapError(err)
}

// ListCampaignsByStatus returns all campaigns in the given stage, oldest first.
func (r *ExchangeRepository) ListCampaignsByStatus(ctx context.Context, status domain.CampaignStatus) ([]port.CampaignWithAd, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, `SELECT `+campaignWithAdColumns+`
		FROM campaigns c JOIN ads a ON a.campaign_id = c.id
		WHERE c.status = $1
		ORDER BY c.created_at ASC`, status)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, scanCampaignWithAd)
	return out, mapError(err)
}

// TransitionCampaign applies a status change with its prior-state
// precondition stated in the update itself, so a racing transition or view
// settlement resolves deterministically at commit time.
func (r *ExchangeRepository) TransitionCampaign(ctx context.Context, id uuid.UUID, from, to domain.CampaignStatus) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		var status domain.CampaignStatus
		err = r.pool.QueryRow(ctx, `SELECT status FROM campaigns WHERE id = $1`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return mapError(err)
		}
		return domain.ErrInvalidState
	}
	return nil
}

// DeleteCampaignWithRefund refunds the full budget to the owner and deletes
// the campaign (its ad cascades) in one transaction. The campaign row is
// locked first so the refund amount and the stage check are read from the
// same snapshot the delete acts on.
func (r *ExchangeRepository) DeleteCampaignWithRefund(ctx context.Context, id uuid.UUID, require domain.CampaignStatus) (*domain.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	c := domain.Campaign{ID: id}
	err = tx.QueryRow(ctx, `SELECT user_id, campaign_name, total_budget_credits,
		remaining_budget_credits, status, country_id, created_at
		FROM campaigns WHERE id = $1 FOR UPDATE`, id).
		Scan(&c.UserID, &c.CampaignName, &c.TotalBudgetCredits,
			&c.RemainingBudgetCredits, &c.Status, &c.CountryID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	if c.Status != require {
		return nil, domain.ErrInvalidState
	}

	// refund of the total budget, not the remaining one
	tag, err := tx.Exec(ctx, `UPDATE profiles SET credits = credits + $1, updated_at = now()
		WHERE user_id = $2`, c.TotalBudgetCredits, c.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	if _, err = tx.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return nil, mapError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// SettleAdView records a rewarded view. Serialization failures are retried
// a bounded number of times; after that the conflict is surfaced to the
// caller, who may retry with backoff.
func (r *ExchangeRepository) SettleAdView(ctx context.Context, viewerID, adID uuid.UUID, reward int64, cooldown time.Duration) (*port.ViewReceipt, error) {
	var lastErr error
	for attempt := 0; attempt < settleRetries; attempt++ {
		receipt, err := r.settleOnce(ctx, viewerID, adID, reward, cooldown)
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			lastErr = err
			continue
		}
		return receipt, err
	}
	return nil, lastErr
}

func (r *ExchangeRepository) settleOnce(ctx context.Context, viewerID, adID uuid.UUID, reward int64, cooldown time.Duration) (*port.ViewReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	// lock the campaign row through the ad
	var (
		campaignID uuid.UUID
		ownerID    uuid.UUID
		status     domain.CampaignStatus
		remaining  int64
	)
	err = tx.QueryRow(ctx, `SELECT c.id, c.user_id, c.status, c.remaining_budget_credits
		FROM ads a JOIN campaigns c ON c.id = a.campaign_id
		WHERE a.id = $1
		FOR UPDATE OF c`, adID).
		Scan(&campaignID, &ownerID, &status, &remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	if ownerID == viewerID {
		return nil, domain.ErrIneligible
	}
	// budget before status so a drained (completed) campaign reports
	// exhaustion rather than a generic ineligibility
	if remaining < reward {
		return nil, domain.ErrBudgetExhausted
	}
	if status != domain.StatusActive {
		return nil, domain.ErrIneligible
	}

	// cooldown from the ledger, per (viewer, campaign) pair
	cutoff := time.Now().Add(-cooldown)
	var blocked bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ad_views
		WHERE user_id = $1 AND campaign_id = $2 AND viewed_at > $3)`,
		viewerID, campaignID, cutoff).Scan(&blocked)
	if err != nil {
		return nil, mapError(err)
	}
	if blocked {
		return nil, domain.ErrIneligible
	}

	// conditional decrement restates the precondition so a concurrent
	// settle of the last remaining credits cannot both pass zero
	tag, err := tx.Exec(ctx, `UPDATE campaigns
		SET remaining_budget_credits = remaining_budget_credits - $1,
		    status = CASE WHEN remaining_budget_credits - $1 = 0 THEN 'completed' ELSE status END
		WHERE id = $2 AND status = 'active' AND remaining_budget_credits >= $1`,
		reward, campaignID)
	if err != nil {
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetExhausted
	}

	view := domain.AdView{
		UserID:        viewerID,
		AdID:          adID,
		CampaignID:    campaignID,
		CreditsEarned: reward,
	}
	err = tx.QueryRow(ctx, `INSERT INTO ad_views (user_id, ad_id, campaign_id, credits_earned)
		VALUES ($1, $2, $3, $4) RETURNING id, viewed_at`,
		view.UserID, view.AdID, view.CampaignID, view.CreditsEarned).
		Scan(&view.ID, &view.ViewedAt)
	if err != nil {
		return nil, mapError(err)
	}

	var viewerCredits int64
	err = tx.QueryRow(ctx, `UPDATE profiles SET credits = credits + $1, updated_at = now()
		WHERE user_id = $2 RETURNING credits`, reward, viewerID).Scan(&viewerCredits)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err)
	}
	return &port.ViewReceipt{
		View:              view,
		ViewerCredits:     viewerCredits,
		RemainingBudget:   remaining - reward,
		CampaignCompleted: remaining-reward == 0,
	}, nil
}

// ListEligibleAds applies the full filter chain in one query. A viewer
// without a country partition matches no campaigns and gets an empty set.
func (r *ExchangeRepository) ListEligibleAds(ctx context.Context, viewerID uuid.UUID, reward int64, cooldown time.Duration) (*port.EligibleSet, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	cutoff := time.Now().Add(-cooldown)
	rows, err := r.pool.Query(ctx, `SELECT `+campaignWithAdColumns+`
		FROM campaigns c
		JOIN ads a ON a.campaign_id = c.id
		JOIN profiles p ON p.user_id = $1
		WHERE c.status = 'active'
		  AND c.remaining_budget_credits >= $2
		  AND c.country_id = p.country_id
		  AND c.user_id <> $1
		  AND NOT EXISTS (
		      SELECT 1 FROM ad_views v
		      WHERE v.user_id = $1 AND v.campaign_id = c.id AND v.viewed_at > $3
		  )`, viewerID, reward, cutoff)
	if err != nil {
		return nil, mapError(err)
	}
	ads, err := pgx.CollectRows(rows, scanCampaignWithAd)
	if err != nil {
		return nil, mapError(err)
	}
	set := &port.EligibleSet{Ads: ads}
	if len(ads) > 0 {
		return set, nil
	}

	// empty: report when the earliest cooldown-blocked campaign resolves,
	// if any campaign would be eligible absent the cooldown filter
	var earliest *time.Time
	err = r.pool.QueryRow(ctx, `SELECT min(last_view.viewed_at)
		FROM campaigns c
		JOIN profiles p ON p.user_id = $1
		JOIN LATERAL (
		    SELECT max(v.viewed_at) AS viewed_at
		    FROM ad_views v
		    WHERE v.user_id = $1 AND v.campaign_id = c.id AND v.viewed_at > $3
		) last_view ON last_view.viewed_at IS NOT NULL
		WHERE c.status = 'active'
		  AND c.remaining_budget_credits >= $2
		  AND c.country_id = p.country_id
		  AND c.user_id <> $1`, viewerID, reward, cutoff).Scan(&earliest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err)
	}
	if earliest != nil {
		ends := earliest.Add(cooldown)
		set.CooldownEndsAt = &ends
	}
	return set, nil
}

// DeleteAccount removes the profile, its campaigns (ads and views against
// them cascade) and the user's own ledger entries. Intentionally no credit
// settlement: paid-out and locked-up credits stay where they are.
func (r *ExchangeRepository) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM ad_views WHERE user_id = $1`, userID); err != nil {
		return mapError(err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM campaigns WHERE user_id = $1`, userID); err != nil {
		return mapError(err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return mapError(tx.Commit(ctx))
}

// CampaignStats aggregates ledger entries for a period.
func (r *ExchangeRepository) CampaignStats(ctx context.Context, req port.StatsReq) (*port.StatsResp, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	args := []any{req.From, req.To}
	query := `SELECT COALESCE(count(*), 0), COALESCE(sum(credits_earned), 0)
		FROM ad_views WHERE viewed_at >= $1 AND viewed_at <= $2`
	if req.CampaignID != nil {
		query += ` AND campaign_id = $3`
		args = append(args, *req.CampaignID)
	}
	var resp port.StatsResp
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&resp.Views, &resp.CreditsPaid); err != nil {
		return nil, mapError(err)
	}
	return &resp, nil
}

// ListCountries returns all geographic partitions.
func (r *ExchangeRepository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	rows, err := r.pool.Query(ctx, `SELECT id, name, code FROM countries ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Country, error) {
		var c domain.Country
		err := row.Scan(&c.ID, &c.Name, &c.Code)
		return c, err
	})
	return out, mapError(err)
}
