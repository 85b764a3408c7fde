package transfer

import (
	"context"

	"github.com/google/uuid"
)

// InboxRepository stores staged transfers awaiting acceptance.
//
// Stage must be atomic with respect to the one-entry-per-fingerprint rule:
// under concurrent staging of the same fingerprint exactly one call succeeds
// and the rest return ErrDuplicateFingerprint. HasLiveEntry reports on
// consumed entries too; the fingerprint stays claimed after acceptance so a
// resend of the same record version is still deduplicated. Remove consumes
// the entry and must report ErrEntryNotFound when it was already consumed,
// which is how a lost concurrent accept is detected.
type InboxRepository interface {
	HasLiveEntry(ctx context.Context, fingerprint string) (bool, error)
	Stage(ctx context.Context, e *InboxEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*InboxEntry, error)
	ListForHospital(ctx context.Context, hospital string, limit, offset int) ([]*InboxEntry, int, error)
	Remove(ctx context.Context, id uuid.UUID) error
}
