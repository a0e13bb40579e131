package booking

import (
	"context"
	"time"

	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainpricing "stayhub/internal/domain/pricing"
	domainrange "stayhub/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "booking.availability"

type CheckAvailabilityQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type AvailabilityResult struct {
	Available  bool   `json:"available"`
	ConflictID string `json:"conflict_id,omitempty"`
}

// CheckAvailabilityHandler runs the advisory overlap check against the
// confirmed bookings of a listing. It prevents the common case only; the
// write path re-validates under the repository guard.
type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (AvailabilityResult, error) {
	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return AvailabilityResult{}, domainpricing.ErrInvalidDateRange
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	confirmed, err := unit.Bookings().ConfirmedByListing(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return AvailabilityResult{}, err
	}
	availability := domainbooking.CheckAvailability(confirmed, dr)
	return AvailabilityResult{
		Available:  availability.Available,
		ConflictID: string(availability.ConflictID),
	}, nil
}

var _ queries.Handler[CheckAvailabilityQuery, AvailabilityResult] = (*CheckAvailabilityHandler)(nil)
