package listings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryListingRepo struct {
	occupied  map[string]bool
	available map[string]bool
	failCheck bool
}

func newMemoryListingRepo() *memoryListingRepo {
	return &memoryListingRepo{occupied: make(map[string]bool), available: make(map[string]bool)}
}

func (r *memoryListingRepo) HasApprovedBooking(ctx context.Context, propertyID string) (bool, error) {
	if r.failCheck {
		return false, errors.New("store unavailable")
	}
	return r.occupied[propertyID], nil
}

func (r *memoryListingRepo) SetAvailability(ctx context.Context, propertyID string, available bool) error {
	r.available[propertyID] = available
	return nil
}

func TestRecomputeAvailability(t *testing.T) {
	repo := newMemoryListingRepo()
	svc := NewService(repo)
	ctx := context.Background()

	repo.occupied["prop-1"] = true
	require.NoError(t, svc.RecomputeAvailability(ctx, "prop-1"))
	require.False(t, repo.available["prop-1"])

	repo.occupied["prop-1"] = false
	require.NoError(t, svc.RecomputeAvailability(ctx, "prop-1"))
	require.True(t, repo.available["prop-1"])

	require.NoError(t, svc.RecomputeAvailability(ctx, "prop-2"))
	require.True(t, repo.available["prop-2"])
}

func TestRecomputeAvailabilityPropagatesLookupFailure(t *testing.T) {
	repo := newMemoryListingRepo()
	repo.failCheck = true
	svc := NewService(repo)

	err := svc.RecomputeAvailability(context.Background(), "prop-1")
	require.Error(t, err)
	require.Empty(t, repo.available)
}
