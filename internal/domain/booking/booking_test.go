package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

func instantListing() *listings.Listing {
	return &listings.Listing{
		ID:          "lst-1",
		Host:        "host-1",
		Title:       "Test flat",
		NightlyRate: money.Must(10000, "USD"),
		GuestsLimit: 4,
		Mode:        listings.ModeInstant,
		State:       listings.ListingActive,
	}
}

func approvalListing() *listings.Listing {
	l := instantListing()
	l.Mode = listings.ModeApproval
	return l
}

func stay(checkIn, checkOut int) daterange.DateRange {
	dr, err := daterange.New(
		time.Date(2025, time.June, checkIn, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, checkOut, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		panic(err)
	}
	return dr
}

func newTestBooking(t *testing.T, listing *listings.Listing, id string, dr daterange.DateRange) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:        BookingID(id),
		Listing:   listing,
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Price:     pricing.Quote{Total: money.Must(30000, "USD")},
		Payment:   "card",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingInstantModeConfirmsImmediately(t *testing.T) {
	b := newTestBooking(t, instantListing(), "bk-1", stay(10, 13))
	assert.Equal(t, StatusConfirmed, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "booking.requested", events[0].EventName())
	assert.Equal(t, "booking.confirmed", events[1].EventName())
}

func TestNewBookingApprovalModeStartsPending(t *testing.T) {
	b := newTestBooking(t, approvalListing(), "bk-1", stay(10, 13))
	assert.Equal(t, StatusPending, b.Status)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestNewBookingValidation(t *testing.T) {
	listing := instantListing()
	base := CreateParams{
		ID:        "bk-1",
		Listing:   listing,
		GuestID:   "guest-1",
		Range:     stay(10, 13),
		Guests:    2,
		Payment:   "card",
		CreatedAt: time.Now(),
	}

	params := base
	params.GuestID = ""
	_, err := NewBooking(params)
	assert.ErrorIs(t, err, ErrGuestRequired)

	params = base
	params.Guests = 0
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrInvalidGuests)

	params = base
	params.Guests = listing.GuestsLimit + 1
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrGuestsLimit)

	params = base
	params.Payment = ""
	_, err = NewBooking(params)
	assert.ErrorIs(t, err, ErrPaymentRequired)
}

func TestConfirmOnlyFromPending(t *testing.T) {
	b := newTestBooking(t, approvalListing(), "bk-1", stay(10, 13))
	b.ClearEvents()

	require.NoError(t, b.Confirm(time.Now()))
	assert.Equal(t, StatusConfirmed, b.Status)
	require.Len(t, b.PendingEvents(), 1)

	assert.ErrorIs(t, b.Confirm(time.Now()), ErrInvalidState)
}

func TestDeclineOnlyFromPending(t *testing.T) {
	b := newTestBooking(t, approvalListing(), "bk-1", stay(10, 13))
	require.NoError(t, b.Decline("dates blocked", time.Now()))
	assert.Equal(t, StatusDeclined, b.Status)

	assert.ErrorIs(t, b.Decline("again", time.Now()), ErrInvalidState)
	assert.ErrorIs(t, b.Confirm(time.Now()), ErrInvalidState)
}

func TestFirstConflictIgnoresPendingAndDeclined(t *testing.T) {
	confirmed := newTestBooking(t, instantListing(), "bk-confirmed", stay(10, 15))
	pending := newTestBooking(t, approvalListing(), "bk-pending", stay(10, 15))
	declined := newTestBooking(t, approvalListing(), "bk-declined", stay(10, 15))
	require.NoError(t, declined.Decline("", time.Now()))

	existing := []*Booking{pending, declined, confirmed}

	hit := FirstConflict(existing, stay(12, 18))
	require.NotNil(t, hit)
	assert.Equal(t, BookingID("bk-confirmed"), hit.ID)

	assert.Nil(t, FirstConflict([]*Booking{pending, declined}, stay(12, 18)))
}

func TestCheckAvailability(t *testing.T) {
	confirmed := newTestBooking(t, instantListing(), "bk-1", stay(10, 15))

	busy := CheckAvailability([]*Booking{confirmed}, stay(12, 18))
	assert.False(t, busy.Available)
	assert.Equal(t, BookingID("bk-1"), busy.ConflictID)

	free := CheckAvailability([]*Booking{confirmed}, stay(15, 20))
	assert.True(t, free.Available, "back-to-back stays must not conflict")
	assert.Empty(t, free.ConflictID)
}
