package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

func testListing() *listings.Listing {
	return &listings.Listing{
		ID:          "lst-1",
		Host:        "host-1",
		Title:       "Test flat",
		NightlyRate: money.Must(50000, "USD"),
		CleaningFee: money.Must(5000, "USD"),
		ServiceFee:  money.Must(3000, "USD"),
		GuestsLimit: 4,
		State:       listings.ListingActive,
	}
}

func date(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeQuoteFlatRate(t *testing.T) {
	quote, err := ComputeQuote(testListing(), date(10), date(13), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, int64(150000), quote.Subtotal.Amount)
	assert.Equal(t, int64(5000), quote.CleaningFee.Amount)
	assert.Equal(t, int64(3000), quote.ServiceFee.Amount)
	assert.Equal(t, int64(158000), quote.Total.Amount)
	assert.Equal(t, "USD", quote.Total.Currency)
}

func TestComputeQuoteIsPure(t *testing.T) {
	listing := testListing()
	first, err := ComputeQuote(listing, date(10), date(13), 2)
	require.NoError(t, err)
	second, err := ComputeQuote(listing, date(10), date(13), 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeQuoteWeekendOverride(t *testing.T) {
	listing := testListing()
	listing.NightlyRate = money.Must(10000, "USD")
	listing.WeekendRate = money.Must(15000, "USD")
	listing.CleaningFee = money.Money{}
	listing.ServiceFee = money.Money{}

	// 2025-06-11 is a Wednesday; five nights cover Fri 13th and Sat 14th.
	quote, err := ComputeQuote(listing, date(11), date(16), 2)
	require.NoError(t, err)

	assert.Equal(t, 5, quote.Nights)
	assert.Equal(t, int64(3*10000+2*15000), quote.Subtotal.Amount)
	assert.Equal(t, quote.Subtotal, quote.Total)
}

func TestComputeQuoteRejectsMixedCurrencyWeekendRate(t *testing.T) {
	listing := testListing()
	listing.NightlyRate = money.Must(10000, "USD")
	listing.WeekendRate = money.Must(15000, "EUR")
	listing.CleaningFee = money.Money{}
	listing.ServiceFee = money.Money{}

	// Wed through Mon so both weekday and weekend nights are summed.
	_, err := ComputeQuote(listing, date(11), date(16), 2)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestComputeQuoteSundayNightIsNotWeekend(t *testing.T) {
	listing := testListing()
	listing.NightlyRate = money.Must(10000, "USD")
	listing.WeekendRate = money.Must(15000, "USD")
	listing.CleaningFee = money.Money{}
	listing.ServiceFee = money.Money{}

	// 2025-06-15 is a Sunday.
	quote, err := ComputeQuote(listing, date(15), date(17), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), quote.Subtotal.Amount)
}

func TestComputeQuoteValidation(t *testing.T) {
	listing := testListing()

	_, err := ComputeQuote(nil, date(10), date(13), 2)
	assert.ErrorIs(t, err, ErrListingRequired)

	_, err = ComputeQuote(listing, date(10), date(10), 2)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ComputeQuote(listing, date(13), date(10), 2)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ComputeQuote(listing, time.Time{}, date(13), 2)
	assert.ErrorIs(t, err, ErrMissingParameters)

	_, err = ComputeQuote(listing, date(10), date(13), 0)
	assert.ErrorIs(t, err, ErrMissingParameters)
}
