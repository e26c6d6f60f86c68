package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo data: a handful of countries, one advertiser and one
// viewer profile per country, and one already-approved campaign per
// country so the view flow can be exercised immediately.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	countries := []struct {
		Name string
		Code string
	}{
		{"United States", "US"},
		{"Germany", "DE"},
		{"Armenia", "AM"},
	}
	countryIDs := make([]uuid.UUID, 0, len(countries))
	for _, c := range countries {
		var id uuid.UUID
		err := pool.QueryRow(ctx, `INSERT INTO countries (name, code) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, c.Name, c.Code).Scan(&id)
		if err != nil {
			return err
		}
		countryIDs = append(countryIDs, id)
	}

	for i, countryID := range countryIDs {
		advertiser := uuid.New()
		viewer := uuid.New()
		for _, userID := range []uuid.UUID{advertiser, viewer} {
			_, err := pool.Exec(ctx, `INSERT INTO profiles (user_id, credits, country_id)
				VALUES ($1, 100, $2) ON CONFLICT (user_id) DO NOTHING`, userID, countryID)
			if err != nil {
				return err
			}
		}

		// the advertiser's campaign, already debited and approved
		var campaignID uuid.UUID
		err := pool.QueryRow(ctx, `INSERT INTO campaigns
			(user_id, campaign_name, total_budget_credits, remaining_budget_credits, status, country_id)
			VALUES ($1, $2, 50, 50, 'active', $3)
			RETURNING id`,
			advertiser, fmt.Sprintf("Demo campaign %d", i+1), countryID).Scan(&campaignID)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `UPDATE profiles SET credits = credits - 50
			WHERE user_id = $1 AND credits >= 50`, advertiser)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `INSERT INTO ads (campaign_id, ad_creative_path, target_url)
			VALUES ($1, $2, $3) ON CONFLICT (campaign_id) DO NOTHING`,
			campaignID,
			fmt.Sprintf("https://example.com/creative/%d.png", i+1),
			fmt.Sprintf("https://example.com/landing/%d", i+1))
		if err != nil {
			return err
		}
	}
	return nil
}
