package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

type testEnv struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
	users    *memory.UserRepository
	outbox   *memory.Outbox
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	env := testEnv{
		listings: memory.NewListingRepository(),
		bookings: memory.NewBookingRepository(),
		users:    memory.NewUserRepository(),
		outbox:   memory.NewOutbox(),
	}
	env.factory = memory.Factory{
		ListingsRepo: env.listings,
		BookingRepo:  env.bookings,
		UserRepo:     env.users,
	}
	return env
}

func (env testEnv) seedListing(t *testing.T, id string, mode domainlistings.BookingMode) *domainlistings.Listing {
	t.Helper()
	listing := &domainlistings.Listing{
		ID:          domainlistings.ListingID(id),
		Host:        "host-1",
		Title:       "Harbour flat",
		Address:     domainlistings.Address{Line1: "Dock 4", City: "Bergen", Country: "Norway"},
		NightlyRate: money.Must(10000, "EUR"),
		CleaningFee: money.Must(3000, "EUR"),
		GuestsLimit: 4,
		Mode:        mode,
		State:       domainlistings.ListingActive,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, env.listings.Save(context.Background(), listing))
	return listing
}

func (env testEnv) seedUser(t *testing.T, id string) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Name:         "User " + id,
		PasswordHash: "x",
		Roles:        []domainuser.Role{domainuser.RoleGuest},
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, env.users.Save(context.Background(), u))
}

func (env testEnv) drainOutbox(t *testing.T) []string {
	t.Helper()
	var names []string
	for {
		doc, err := env.outbox.Claim(context.Background(), "test")
		require.NoError(t, err)
		if doc == nil {
			return names
		}
		names = append(names, doc.Name)
		require.NoError(t, env.outbox.MarkSent(context.Background(), doc.ID))
	}
}

func requestCmd(id, listingID string, checkIn, checkOut int) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID: id,
		ListingID: listingID,
		GuestID:   "guest-1",
		CheckIn:   time.Date(2025, time.June, checkIn, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, time.June, checkOut, 0, 0, 0, 0, time.UTC),
		Guests:    2,
		Payment:   "card",
	}
}

func TestRequestBookingInstantModeConfirms(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeInstant)
	env.seedUser(t, "guest-1")

	handler := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	result, err := handler.Handle(context.Background(), requestCmd("bk-1", "lst-1", 10, 13))
	require.NoError(t, err)

	assert.Equal(t, "bk-1", result.BookingID)
	assert.Equal(t, string(domainbooking.StatusConfirmed), result.Status)
	assert.Equal(t, int64(3*10000+3000), result.Total)
	assert.Equal(t, "EUR", result.Currency)

	stored, err := env.bookings.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.Equal(t, "Harbour flat", stored.Snapshot.ListingTitle)

	names := env.drainOutbox(t)
	assert.Equal(t, []string{"booking.requested", "booking.confirmed"}, names)
}

func TestRequestBookingApprovalModeStaysPending(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")

	handler := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	result, err := handler.Handle(context.Background(), requestCmd("bk-1", "lst-1", 10, 13))
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusPending), result.Status)

	names := env.drainOutbox(t)
	assert.Equal(t, []string{"booking.requested"}, names)
}

func TestRequestBookingRejectsConfirmedOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeInstant)
	env.seedUser(t, "guest-1")

	handler := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := handler.Handle(context.Background(), requestCmd("bk-1", "lst-1", 10, 15))
	require.NoError(t, err)
	env.drainOutbox(t)

	_, err = handler.Handle(context.Background(), requestCmd("bk-2", "lst-1", 12, 18))
	require.ErrorIs(t, err, domainbooking.ErrDateConflict)

	names := env.drainOutbox(t)
	assert.Equal(t, []string{"booking.double_booking_prevented"}, names)

	// Turnover day: checkout and check-in may share a date.
	_, err = handler.Handle(context.Background(), requestCmd("bk-3", "lst-1", 15, 20))
	require.NoError(t, err)
}

func TestRequestBookingValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeInstant)
	env.seedUser(t, "guest-1")

	handler := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}

	cmd := requestCmd("bk-1", "lst-1", 10, 13)
	cmd.Guests = 9
	_, err := handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrGuestsLimit)

	cmd = requestCmd("bk-2", "lst-1", 10, 13)
	cmd.GuestID = ""
	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrGuestRequired)

	cmd = requestCmd("bk-3", "missing", 10, 13)
	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestCheckAvailabilityQuery(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeInstant)
	env.seedUser(t, "guest-1")

	booker := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := booker.Handle(context.Background(), requestCmd("bk-1", "lst-1", 10, 15))
	require.NoError(t, err)

	handler := &CheckAvailabilityHandler{UoWFactory: env.factory}

	busy, err := handler.Handle(context.Background(), CheckAvailabilityQuery{
		ListingID: "lst-1",
		CheckIn:   time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, busy.Available)
	assert.Equal(t, "bk-1", busy.ConflictID)

	free, err := handler.Handle(context.Background(), CheckAvailabilityQuery{
		ListingID: "lst-1",
		CheckIn:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, free.Available)
}

func TestQuoteStayQueryMatchesBookingTotal(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeInstant)

	handler := &QuoteStayHandler{UoWFactory: env.factory}
	quote, err := handler.Handle(context.Background(), QuoteStayQuery{
		ListingID: "lst-1",
		CheckIn:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC),
		Guests:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, int64(33000), quote.Total.Amount)

	again, err := handler.Handle(context.Background(), QuoteStayQuery{
		ListingID: "lst-1",
		CheckIn:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC),
		Guests:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, quote, again)
}
