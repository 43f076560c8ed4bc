package types

import (
	"time"

	"github.com/google/uuid"
)

// Machine is a reference-catalog entry for an equipment model. Entries are
// soft-deleted: deactivated machines stay referenced by historical data but
// disappear from listings.
type Machine struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Manufacturer string    `db:"manufacturer" json:"manufacturer"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
