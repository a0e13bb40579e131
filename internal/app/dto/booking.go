package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type QuoteDTO struct {
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Guests      int       `json:"guests"`
	Nights      int       `json:"nights"`
	Subtotal    MoneyDTO  `json:"subtotal"`
	CleaningFee MoneyDTO  `json:"cleaning_fee"`
	ServiceFee  MoneyDTO  `json:"service_fee"`
	Total       MoneyDTO  `json:"total"`
}

func MapQuote(q pricing.Quote) QuoteDTO {
	return QuoteDTO{
		CheckIn:     q.CheckIn,
		CheckOut:    q.CheckOut,
		Guests:      q.Guests,
		Nights:      q.Nights,
		Subtotal:    MapMoney(q.Subtotal),
		CleaningFee: MapMoney(q.CleaningFee),
		ServiceFee:  MapMoney(q.ServiceFee),
		Total:       MapMoney(q.Total),
	}
}

// StaySnapshotDTO mirrors the denormalized display data frozen onto a
// booking at creation time.
type StaySnapshotDTO struct {
	ListingTitle string `json:"listing_title"`
	Location     string `json:"location"`
	ImageURL     string `json:"image_url"`
	GuestName    string `json:"guest_name,omitempty"`
	GuestPhoto   string `json:"guest_photo,omitempty"`
	HostName     string `json:"host_name,omitempty"`
	HostPhoto    string `json:"host_photo,omitempty"`
}

type BookingSummary struct {
	ID        string          `json:"id"`
	ListingID string          `json:"listing_id"`
	GuestID   string          `json:"guest_id,omitempty"`
	Snapshot  StaySnapshotDTO `json:"snapshot"`
	CheckIn   time.Time       `json:"check_in"`
	CheckOut  time.Time       `json:"check_out"`
	Guests    int             `json:"guests"`
	Status    string          `json:"status"`
	Total     MoneyDTO        `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		Snapshot: StaySnapshotDTO{
			ListingTitle: b.Snapshot.ListingTitle,
			Location:     b.Snapshot.Location,
			ImageURL:     b.Snapshot.ImageURL,
			GuestName:    b.Snapshot.GuestName,
			GuestPhoto:   b.Snapshot.GuestPhoto,
			HostName:     b.Snapshot.HostName,
			HostPhoto:    b.Snapshot.HostPhoto,
		},
		CheckIn:   b.Range.CheckIn,
		CheckOut:  b.Range.CheckOut,
		Guests:    b.Guests,
		Status:    string(b.Status),
		Total:     MapMoney(b.Price.Total),
		CreatedAt: b.CreatedAt,
	}
}
