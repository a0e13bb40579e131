package booking

import (
	"context"
	"errors"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
)

var (
	ErrNotFound        = errors.New("booking: not found")
	ErrInvalidGuests   = errors.New("booking: guests count must be positive")
	ErrGuestsLimit     = errors.New("booking: guests exceed listing capacity")
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrPaymentRequired = errors.New("booking: payment selection required")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrDateConflict    = errors.New("booking: dates conflict with a confirmed booking")
)

type BookingID string

// Status follows the three-state lifecycle: a booking starts pending or
// confirmed depending on the listing mode and only ever moves
// pending -> confirmed or pending -> declined.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	GuestID   string
	HostID    string
	Range     daterange.DateRange
	Guests    int
	Price     pricing.Quote
	Status    Status
	Payment   string
	Snapshot  StaySnapshot
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// Repository persists bookings. CreateExclusive is the serialized insert
// path: when the new booking is confirmed it must re-validate the
// no-overlap invariant against existing confirmed bookings for the same
// listing and fail with ErrDateConflict instead of double-booking.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	CreateExclusive(ctx context.Context, b *Booking) error
	Save(ctx context.Context, b *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	ConfirmedByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	Listing   *listings.Listing
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Price     pricing.Quote
	Payment   string
	Snapshot  StaySnapshot
	CreatedAt time.Time
}

// NewBooking builds a booking from an accepted quote. The initial status
// comes from the listing booking mode: instant listings confirm
// immediately, approval listings wait for the host.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Listing == nil {
		return nil, errors.New("booking: listing required")
	}
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.Guests > params.Listing.GuestsLimit {
		return nil, ErrGuestsLimit
	}
	if params.Payment == "" {
		return nil, ErrPaymentRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}

	status := StatusPending
	if params.Listing.Mode == listings.ModeInstant {
		status = StatusConfirmed
	}

	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.Listing.ID,
		GuestID:   params.GuestID,
		HostID:    string(params.Listing.Host),
		Range:     params.Range,
		Guests:    params.Guests,
		Price:     params.Price,
		Status:    status,
		Payment:   params.Payment,
		Snapshot:  params.Snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ListingID: b.ListingID, GuestID: b.GuestID, Range: b.Range, Guests: b.Guests, Total: b.Price.Total, At: now})
	if status == StatusConfirmed {
		b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: b.Price.Total, At: now})
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed. The caller is responsible
// for re-validating the no-overlap invariant before persisting.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Decline(reason string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// FirstConflict returns the first confirmed booking whose range overlaps r,
// or nil when the range is free. Pending bookings never conflict; several
// requests may compete for the same dates until the host picks one.
func FirstConflict(existing []*Booking, r daterange.DateRange) *Booking {
	for _, other := range existing {
		if other == nil || other.Status != StatusConfirmed {
			continue
		}
		if other.Range.Overlaps(r) {
			return other
		}
	}
	return nil
}

// Availability is the advisory pre-write check result.
type Availability struct {
	Available  bool
	ConflictID BookingID
}

// CheckAvailability tests r against the confirmed set using half-open
// interval semantics. It is advisory: the write path re-validates under
// the repository's exclusivity guard.
func CheckAvailability(confirmed []*Booking, r daterange.DateRange) Availability {
	if hit := FirstConflict(confirmed, r); hit != nil {
		return Availability{Available: false, ConflictID: hit.ID}
	}
	return Availability{Available: true}
}
