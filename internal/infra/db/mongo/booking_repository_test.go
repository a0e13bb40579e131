package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	domainbooking "stayhub/internal/domain/booking"
	domainrange "stayhub/internal/domain/shared/daterange"
)

// Requires a running MongoDB; set MONGO_TEST_URI to enable, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/infra/db/mongo/...
func testBookingRepo(t *testing.T) *BookingRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	client, err := New(uri, "stayhub_test")
	require.NoError(t, err)
	require.NoError(t, client.DB.Collection("agg_booking").Drop(context.Background()))
	require.NoError(t, client.DB.Collection("booking_guards").Drop(context.Background()))
	return NewBookingRepository(client.DB)
}

func confirmedStay(id string, checkIn, checkOut int) *domainbooking.Booking {
	dr, err := domainrange.New(
		time.Date(2025, time.June, checkIn, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, checkOut, 0, 0, 0, 0, time.UTC),
	)
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
		Status:    domainbooking.StatusConfirmed,
		Payment:   "card",
		CreatedAt: time.Now(),
	}
}

func TestCreateExclusiveWritesGuardAndRejectsOverlap(t *testing.T) {
	repo := testBookingRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, confirmedStay("bk-1", 10, 15)))

	// The guard document is written on every confirmed insert; competing
	// transactions must collide on it.
	var guard struct {
		Rev int64 `bson:"rev"`
	}
	err := repo.guards.FindOne(ctx, bson.M{"_id": "lst-1"}).Decode(&guard)
	require.NoError(t, err)
	assert.Equal(t, int64(1), guard.Rev)

	err = repo.CreateExclusive(ctx, confirmedStay("bk-2", 12, 18))
	assert.ErrorIs(t, err, domainbooking.ErrDateConflict)

	// The rejected attempt still bumped the guard before re-querying.
	require.NoError(t, repo.guards.FindOne(ctx, bson.M{"_id": "lst-1"}).Decode(&guard))
	assert.Equal(t, int64(2), guard.Rev)

	// Turnover day stays bookable.
	require.NoError(t, repo.CreateExclusive(ctx, confirmedStay("bk-3", 15, 20)))
}

func TestSaveTouchesGuardOnConfirmation(t *testing.T) {
	repo := testBookingRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateExclusive(ctx, confirmedStay("bk-1", 10, 15)))

	pending := confirmedStay("bk-2", 12, 18)
	pending.Status = domainbooking.StatusPending
	require.NoError(t, repo.CreateExclusive(ctx, pending))

	require.NoError(t, pending.Confirm(time.Now()))
	assert.ErrorIs(t, repo.Save(ctx, pending), domainbooking.ErrDateConflict)
}
