package directory

import (
	"context"
)

// HospitalRepository provides access to the registry of known hospitals.
type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByName(ctx context.Context, name string) (*Hospital, error)
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
}
