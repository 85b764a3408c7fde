package audit

import (
	"context"
	"fmt"
)

var validEventKinds = map[string]bool{
	EventTransferred: true,
	EventAccepted:    true,
}

type Service struct {
	entries Repository
}

func NewService(entries Repository) *Service {
	return &Service{entries: entries}
}

// Append writes one ledger entry. Called by the transfer engine only; there
// is no external append surface.
func (s *Service) Append(ctx context.Context, e *Entry) error {
	if !validEventKinds[e.EventKind] {
		return fmt.Errorf("invalid event kind: %s", e.EventKind)
	}
	if e.SenderHospital == "" || e.ReceiverHospital == "" {
		return fmt.Errorf("sender and receiver hospitals are required")
	}
	return s.entries.Append(ctx, e)
}

// ListAll returns the full ledger, newest first. Role enforcement happens at
// the HTTP layer; the handler admits only the oversight role.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.entries.ListAll(ctx, limit, offset)
}
