package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainrange "stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

func june(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func booking(id string, status domainbooking.Status, checkIn, checkOut int) *domainbooking.Booking {
	dr, err := domainrange.New(june(checkIn), june(checkOut))
	if err != nil {
		panic(err)
	}
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(id),
		ListingID: "lst-1",
		GuestID:   "guest-1",
		HostID:    "host-1",
		Range:     dr,
		Guests:    2,
		Status:    status,
		Payment:   "card",
		CreatedAt: time.Now(),
	}
}

func TestCreateExclusiveRejectsConfirmedOverlap(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-1", domainbooking.StatusConfirmed, 10, 15)))

	err := repo.CreateExclusive(ctx, booking("bk-2", domainbooking.StatusConfirmed, 12, 18))
	assert.ErrorIs(t, err, domainbooking.ErrDateConflict)

	// Back-to-back stays share a turnover day and must not conflict.
	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-3", domainbooking.StatusConfirmed, 15, 20)))
}

func TestCreateExclusiveAllowsCompetingPendingRequests(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-1", domainbooking.StatusPending, 10, 15)))
	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-2", domainbooking.StatusPending, 10, 15)))
	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-3", domainbooking.StatusConfirmed, 10, 15)))
}

func TestCreateExclusiveRejectsDuplicateID(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-1", domainbooking.StatusPending, 10, 15)))
	assert.Error(t, repo.CreateExclusive(ctx, booking("bk-1", domainbooking.StatusPending, 20, 25)))
}

func TestSaveRechecksOverlapOnConfirmation(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-confirmed", domainbooking.StatusConfirmed, 10, 15)))

	pending := booking("bk-pending", domainbooking.StatusPending, 12, 18)
	require.NoError(t, repo.CreateExclusive(ctx, pending))

	require.NoError(t, pending.Confirm(time.Now()))
	assert.ErrorIs(t, repo.Save(ctx, pending), domainbooking.ErrDateConflict)
}

func TestSaveAllowsUpdatingOwnConfirmedBooking(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	b := booking("bk-1", domainbooking.StatusConfirmed, 10, 15)
	require.NoError(t, repo.CreateExclusive(ctx, b))
	require.NoError(t, repo.Save(ctx, b), "a booking never conflicts with itself")
}

func TestConfirmedByListingFiltersStatus(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-1", domainbooking.StatusConfirmed, 10, 15)))
	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-2", domainbooking.StatusPending, 10, 15)))
	require.NoError(t, repo.CreateExclusive(ctx, booking("bk-3", domainbooking.StatusDeclined, 10, 15)))

	confirmed, err := repo.ConfirmedByListing(ctx, "lst-1")
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, domainbooking.BookingID("bk-1"), confirmed[0].ID)
}

func activeListing(id, host string, rate int64, mode domainlistings.BookingMode) *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(id),
		Host:        domainlistings.HostID(host),
		Title:       "Listing " + id,
		Address:     domainlistings.Address{Line1: "Street 1", City: "Porto", Country: "Portugal"},
		NightlyRate: money.Must(rate, "EUR"),
		GuestsLimit: 4,
		Mode:        mode,
		State:       domainlistings.ListingActive,
		CreatedAt:   time.Now(),
	}
}

func TestListingSearchFilters(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, activeListing("lst-cheap", "host-1", 5000, domainlistings.ModeInstant)))
	require.NoError(t, repo.Save(ctx, activeListing("lst-mid", "host-1", 15000, domainlistings.ModeApproval)))
	expensive := activeListing("lst-expensive", "host-2", 40000, domainlistings.ModeApproval)
	require.NoError(t, repo.Save(ctx, expensive))
	draft := activeListing("lst-draft", "host-2", 8000, domainlistings.ModeInstant)
	draft.State = domainlistings.ListingDraft
	require.NoError(t, repo.Save(ctx, draft))

	result, err := repo.Search(ctx, domainlistings.SearchParams{OnlyActive: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)

	result, err = repo.Search(ctx, domainlistings.SearchParams{OnlyActive: true, PriceMin: 10000, PriceMax: 20000})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, domainlistings.ListingID("lst-mid"), result.Items[0].ID)

	result, err = repo.Search(ctx, domainlistings.SearchParams{OnlyActive: true, Mode: domainlistings.ModeInstant})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, domainlistings.ListingID("lst-cheap"), result.Items[0].ID)

	result, err = repo.Search(ctx, domainlistings.SearchParams{Host: "host-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total, "host view includes drafts")
}

func TestListingSearchSortsByPriceAscByDefault(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, activeListing("lst-b", "host-1", 20000, domainlistings.ModeInstant)))
	require.NoError(t, repo.Save(ctx, activeListing("lst-a", "host-1", 5000, domainlistings.ModeInstant)))

	result, err := repo.Search(ctx, domainlistings.SearchParams{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, domainlistings.ListingID("lst-a"), result.Items[0].ID)
}
