package directory

import (
	"context"
	"errors"
	"fmt"
)

type Service struct {
	hospitals HospitalRepository
}

func NewService(hospitals HospitalRepository) *Service {
	return &Service{hospitals: hospitals}
}

func (s *Service) RegisterHospital(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	h.IsActive = true
	return s.hospitals.Create(ctx, h)
}

func (s *Service) ListHospitals(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.hospitals.List(ctx, limit, offset)
}

// Exists reports whether a hospital with the given name is registered and
// active. Transfer destinations are validated against this.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	h, err := s.hospitals.GetByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return h.IsActive, nil
}
