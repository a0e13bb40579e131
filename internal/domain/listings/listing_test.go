package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/money"
)

func validCreateParams() CreateListingParams {
	return CreateListingParams{
		ID:          "lst-1",
		Host:        "host-1",
		Title:       "Canal house",
		Address:     Address{Line1: "Gracht 5", City: "Amsterdam", Country: "Netherlands"},
		NightlyRate: money.Must(20000, "EUR"),
		CleaningFee: money.Must(4000, "EUR"),
		GuestsLimit: 4,
		Mode:        ModeInstant,
		Now:         time.Now(),
	}
}

func TestNewListingRejectsMixedCurrencies(t *testing.T) {
	params := validCreateParams()
	params.WeekendRate = money.Must(25000, "USD")
	_, err := NewListing(params)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	params = validCreateParams()
	params.ServiceFee = money.Must(1000, "GBP")
	_, err = NewListing(params)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	// Zero-amount fees carry no currency constraint.
	params = validCreateParams()
	params.WeekendRate = money.Money{Amount: 0, Currency: "USD"}
	_, err = NewListing(params)
	assert.NoError(t, err)
}

func TestUpdateAttributesRejectsMixedCurrencies(t *testing.T) {
	listing, err := NewListing(validCreateParams())
	require.NoError(t, err)

	err = listing.UpdateAttributes(UpdateListingParams{
		Title:       listing.Title,
		Address:     listing.Address,
		NightlyRate: listing.NightlyRate,
		WeekendRate: money.Must(25000, "USD"),
		GuestsLimit: listing.GuestsLimit,
		Mode:        listing.Mode,
		Now:         time.Now(),
	})
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}
