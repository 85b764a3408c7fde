package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// Repository provides access to stored clinical records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]*Record, int, error)
	ListByPatient(ctx context.Context, patientIdentifier string, limit, offset int) ([]*Record, int, error)
}
