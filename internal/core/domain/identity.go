package domain

import "github.com/google/uuid"

// Identity describes the caller of an operation as asserted by the
// external identity provider. The core performs no authentication itself;
// it only enforces authorization rules against these fields.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}
