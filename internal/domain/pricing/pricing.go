package pricing

import (
	"errors"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrInvalidDateRange  = errors.New("pricing: date range must cover at least one night")
	ErrMissingParameters = errors.New("pricing: dates and guest count are required")
	ErrListingRequired   = errors.New("pricing: listing is required")
)

// Quote is the price breakdown for a prospective stay. It echoes the
// requested range and guest count so callers can persist it verbatim.
type Quote struct {
	CheckIn     time.Time   `json:"check_in"`
	CheckOut    time.Time   `json:"check_out"`
	Guests      int         `json:"guests"`
	Nights      int         `json:"nights"`
	Subtotal    money.Money `json:"subtotal"`
	CleaningFee money.Money `json:"cleaning_fee"`
	ServiceFee  money.Money `json:"service_fee"`
	Total       money.Money `json:"total"`
}

// ComputeQuote prices a stay against a listing. It is pure: identical
// inputs always produce identical quotes and nothing is mutated.
//
// The subtotal is nightly rate times nights. Listings carrying a weekend
// rate charge Friday and Saturday nights at that rate instead; listings
// without one follow the plain formula exactly.
func ComputeQuote(listing *listings.Listing, checkIn, checkOut time.Time, guests int) (Quote, error) {
	if listing == nil {
		return Quote{}, ErrListingRequired
	}
	if checkIn.IsZero() || checkOut.IsZero() || guests == 0 {
		return Quote{}, ErrMissingParameters
	}
	if guests < 0 {
		return Quote{}, ErrMissingParameters
	}
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return Quote{}, ErrInvalidDateRange
	}
	nights := dr.Nights()
	if nights <= 0 {
		return Quote{}, ErrInvalidDateRange
	}

	subtotal := listing.NightlyRate.Multiply(int64(nights))
	if listing.HasWeekendRate() {
		subtotal = money.Money{Currency: listing.NightlyRate.Currency}
		var addErr error
		dr.EachNight(func(night time.Time) {
			if addErr != nil {
				return
			}
			rate := listing.NightlyRate
			if isWeekendNight(night) {
				rate = listing.WeekendRate
			}
			subtotal, addErr = subtotal.Add(rate)
		})
		if addErr != nil {
			return Quote{}, addErr
		}
	}

	total := subtotal
	if !listing.CleaningFee.IsZero() {
		total, err = total.Add(listing.CleaningFee)
		if err != nil {
			return Quote{}, err
		}
	}
	if !listing.ServiceFee.IsZero() {
		total, err = total.Add(listing.ServiceFee)
		if err != nil {
			return Quote{}, err
		}
	}

	return Quote{
		CheckIn:     dr.CheckIn,
		CheckOut:    dr.CheckOut,
		Guests:      guests,
		Nights:      nights,
		Subtotal:    subtotal,
		CleaningFee: listing.CleaningFee,
		ServiceFee:  listing.ServiceFee,
		Total:       total,
	}, nil
}

// isWeekendNight reports whether the night starting at t is charged at the
// weekend rate. Friday and Saturday nights count; Sunday night does not.
func isWeekendNight(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Friday, time.Saturday:
		return true
	default:
		return false
	}
}
