package audit

import (
	"context"
)

// Repository is the append-only store behind the ledger. Append is the only
// mutation; there are no update or delete operations.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error)
}
