package dto

import (
	"time"

	domainlistings "stayhub/internal/domain/listings"
)

type AddressDTO struct {
	Line1   string  `json:"line1"`
	City    string  `json:"city"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

type ListingSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	NightlyRate MoneyDTO `json:"nightly_rate"`
	GuestsLimit int      `json:"guests_limit"`
	Mode        string   `json:"booking_mode"`
	ImageURL    string   `json:"image_url"`
}

type ListingCatalog struct {
	Items []ListingSummary `json:"items"`
	Total int              `json:"total"`
}

type ListingDetail struct {
	ID          string     `json:"id"`
	HostID      string     `json:"host_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Address     AddressDTO `json:"address"`
	NightlyRate MoneyDTO   `json:"nightly_rate"`
	WeekendRate *MoneyDTO  `json:"weekend_rate,omitempty"`
	CleaningFee MoneyDTO   `json:"cleaning_fee"`
	ServiceFee  MoneyDTO   `json:"service_fee"`
	GuestsLimit int        `json:"guests_limit"`
	Mode        string     `json:"booking_mode"`
	ImageURL    string     `json:"image_url"`
	Photos      []string   `json:"photos"`
	Amenities   []string   `json:"amenities"`
	State       string     `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
}

func MapListingSummary(l *domainlistings.Listing) ListingSummary {
	return ListingSummary{
		ID:          string(l.ID),
		Title:       l.Title,
		City:        l.Address.City,
		Country:     l.Address.Country,
		NightlyRate: MapMoney(l.NightlyRate),
		GuestsLimit: l.GuestsLimit,
		Mode:        string(l.Mode),
		ImageURL:    l.ImageURL,
	}
}

func MapListingDetail(l *domainlistings.Listing) ListingDetail {
	detail := ListingDetail{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Address: AddressDTO{
			Line1:   l.Address.Line1,
			City:    l.Address.City,
			Region:  l.Address.Region,
			Country: l.Address.Country,
			Lat:     l.Address.Lat,
			Lon:     l.Address.Lon,
		},
		NightlyRate: MapMoney(l.NightlyRate),
		CleaningFee: MapMoney(l.CleaningFee),
		ServiceFee:  MapMoney(l.ServiceFee),
		GuestsLimit: l.GuestsLimit,
		Mode:        string(l.Mode),
		ImageURL:    l.ImageURL,
		Photos:      append([]string(nil), l.Photos...),
		Amenities:   append([]string(nil), l.Amenities...),
		State:       string(l.State),
		CreatedAt:   l.CreatedAt,
	}
	if l.HasWeekendRate() {
		weekend := MapMoney(l.WeekendRate)
		detail.WeekendRate = &weekend
	}
	return detail
}
