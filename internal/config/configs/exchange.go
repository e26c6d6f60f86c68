package configs

import "time"

// Exchange holds the economic constants of the credit exchange. The source
// values are platform policy, not invariants, so they are configurable;
// the defaults reproduce the original design (100-credit signup bonus,
// 5 credits per view, 72-hour per-campaign cooldown, 30-second dwell).
type Exchange struct {
	// SignupBonusCredits is granted to every new profile at registration.
	SignupBonusCredits int64 `env:"SIGNUP_BONUS" envDefault:"100"`
	// ViewRewardCredits is earned per ad view and debited from the
	// campaign budget; campaigns with less than this remaining are not
	// served.
	ViewRewardCredits int64 `env:"VIEW_REWARD" envDefault:"5"`
	// Cooldown is the minimum interval between two rewarded views of the
	// same campaign by the same viewer.
	Cooldown time.Duration `env:"COOLDOWN" envDefault:"72h"`
	// DwellSeconds is the watch time the UI enforces before a view may be
	// claimed. Pacing only; correctness never depends on it.
	DwellSeconds int `env:"DWELL_SECONDS" envDefault:"30"`
}
