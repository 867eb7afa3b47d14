package listings

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access for listing availability.
type RepositoryPort interface {
	HasApprovedBooking(ctx context.Context, propertyID string) (bool, error)
	SetAvailability(ctx context.Context, propertyID string, available bool) error
}

// Service recomputes listing availability after booking transitions.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RecomputeAvailability derives availability from the booking table: a
// property is available while no approved booking holds it.
func (s *Service) RecomputeAvailability(ctx context.Context, propertyID string) error {
	occupied, err := s.repo.HasApprovedBooking(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("check bookings for property %s: %w", propertyID, err)
	}
	if err := s.repo.SetAvailability(ctx, propertyID, !occupied); err != nil {
		return fmt.Errorf("set availability for property %s: %w", propertyID, err)
	}
	return nil
}
