package booking

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

func withUnit(t *testing.T, env testEnv) context.Context {
	t.Helper()
	unit, err := env.factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.ContextWithUnitOfWork(context.Background(), unit)
}

func seedApprovalRequest(t *testing.T, env testEnv, id string, checkIn, checkOut int) {
	t.Helper()
	handler := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := handler.Handle(context.Background(), requestCmd(id, "lst-1", checkIn, checkOut))
	require.NoError(t, err)
	env.drainOutbox(t)
}

func TestConfirmHostBooking(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")
	seedApprovalRequest(t, env, "bk-1", 10, 15)

	handler := &ConfirmHostBookingHandler{Outbox: env.outbox}
	ctx := withUnit(t, env)
	result, err := handler.Handle(ctx, ConfirmHostBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusConfirmed), result.Status)

	names := env.drainOutbox(t)
	assert.Equal(t, []string{"booking.confirmed"}, names)
}

func TestConfirmHostBookingRejectsForeignHost(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")
	seedApprovalRequest(t, env, "bk-1", 10, 15)

	handler := &ConfirmHostBookingHandler{Outbox: env.outbox}
	ctx := withUnit(t, env)
	_, err := handler.Handle(ctx, ConfirmHostBookingCommand{HostID: "someone-else", BookingID: "bk-1"})
	assert.ErrorIs(t, err, ErrBookingNotOwned)
}

func TestConfirmHostBookingRevalidatesOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")

	// Two competing requests for the same dates; the host confirms one.
	seedApprovalRequest(t, env, "bk-first", 10, 15)
	seedApprovalRequest(t, env, "bk-second", 12, 18)

	handler := &ConfirmHostBookingHandler{Outbox: env.outbox}

	ctx := withUnit(t, env)
	_, err := handler.Handle(ctx, ConfirmHostBookingCommand{HostID: "host-1", BookingID: "bk-first"})
	require.NoError(t, err)
	env.drainOutbox(t)

	// The loser can no longer be confirmed.
	ctx = withUnit(t, env)
	_, err = handler.Handle(ctx, ConfirmHostBookingCommand{HostID: "host-1", BookingID: "bk-second"})
	assert.ErrorIs(t, err, domainbooking.ErrDateConflict)

	stored, err := env.bookings.ByID(context.Background(), "bk-second")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, stored.Status, "failed confirmation leaves the request pending")
}

func TestDeclineHostBooking(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")
	seedApprovalRequest(t, env, "bk-1", 10, 15)

	handler := &DeclineHostBookingHandler{Outbox: env.outbox}
	ctx := withUnit(t, env)
	result, err := handler.Handle(ctx, DeclineHostBookingCommand{HostID: "host-1", BookingID: "bk-1", Reason: "maintenance week"})
	require.NoError(t, err)
	assert.Equal(t, string(domainbooking.StatusDeclined), result.Status)

	// Declining frees the dates for everyone else.
	booker := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err = booker.Handle(context.Background(), requestCmd("bk-2", "lst-1", 10, 15))
	require.NoError(t, err)
}

func TestListHostBookingsFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, "lst-1", domainlistings.ModeApproval)
	env.seedUser(t, "guest-1")
	seedApprovalRequest(t, env, "bk-1", 10, 15)
	seedApprovalRequest(t, env, "bk-2", 20, 25)

	confirm := &ConfirmHostBookingHandler{Outbox: env.outbox}
	ctx := withUnit(t, env)
	_, err := confirm.Handle(ctx, ConfirmHostBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)

	list := &ListHostBookingsHandler{UoWFactory: env.factory}

	pending, err := list.Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "bk-2", pending.Items[0].ID)

	all, err := list.Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1", Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	confirmed, err := list.Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1", Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed.Items, 1)
	assert.Equal(t, "bk-1", confirmed.Items[0].ID)
}

func TestListHostBookingsSpansListingPages(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "guest-1")

	// 61 listings push the priciest one past the first search page.
	for i := 1; i <= 60; i++ {
		env.seedListing(t, fmt.Sprintf("lst-%03d", i), domainlistings.ModeApproval)
	}
	priciest := env.seedListing(t, "lst-priciest", domainlistings.ModeApproval)
	priciest.NightlyRate = money.Must(99000, "EUR")
	require.NoError(t, env.listings.Save(context.Background(), priciest))

	booker := &RequestBookingHandler{UoWFactory: env.factory, Outbox: env.outbox}
	_, err := booker.Handle(context.Background(), requestCmd("bk-far", "lst-priciest", 10, 15))
	require.NoError(t, err)

	list := &ListHostBookingsHandler{UoWFactory: env.factory}
	result, err := list.Handle(context.Background(), ListHostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "bk-far", result.Items[0].ID)
}
