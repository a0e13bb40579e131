package booking

import (
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID BookingID           `json:"booking_id"`
	ListingID listings.ListingID  `json:"listing_id"`
	GuestID   string              `json:"guest_id"`
	Range     daterange.DateRange `json:"range"`
	Guests    int                 `json:"guests"`
	Total     money.Money         `json:"total"`
	At        time.Time           `json:"at"`
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID           `json:"booking_id"`
	ListingID listings.ListingID  `json:"listing_id"`
	Range     daterange.DateRange `json:"range"`
	Total     money.Money         `json:"total"`
	At        time.Time           `json:"at"`
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingDeclined struct {
	BookingID BookingID `json:"booking_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

type DoubleBookingPrevented struct {
	ListingID listings.ListingID  `json:"listing_id"`
	Range     daterange.DateRange `json:"range"`
	At        time.Time           `json:"at"`
}

func (e DoubleBookingPrevented) EventName() string     { return "booking.double_booking_prevented" }
func (e DoubleBookingPrevented) AggregateID() string   { return string(e.ListingID) }
func (e DoubleBookingPrevented) OccurredAt() time.Time { return e.At }
