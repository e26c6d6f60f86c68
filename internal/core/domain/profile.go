package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds a user's credit balance and geographic partition. Credits
// are only ever mutated through the lifecycle engine's atomic operations.
type Profile struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Credits   int64
	CountryID *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Country is a geographic partition for ad targeting. Campaigns are only
// shown to viewers whose profile carries the same country.
type Country struct {
	ID   uuid.UUID
	Name string
	Code string
}
