package directory

import (
	"time"

	"github.com/google/uuid"
)

// Hospital is a known destination facility. The set of hospitals is small
// and enumerable; transfers are only allowed between registered names.
type Hospital struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	City      *string   `db:"city" json:"city,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
