package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("listings: not found")
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrGuestsLimit      = errors.New("listings: guests limit must be at least 1")
	ErrNightlyRate      = errors.New("listings: nightly rate must be positive")
	ErrNegativeFee      = errors.New("listings: fees must be non-negative")
	ErrInvalidMode      = errors.New("listings: booking mode must be instant or approval")
	ErrInvalidState     = errors.New("listings: invalid state transition")
	ErrAddressRequired  = errors.New("listings: address must be provided when publishing")
	ErrCurrencyMismatch = errors.New("listings: rates and fees must share the nightly rate currency")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

// BookingMode controls whether a booking is confirmed immediately or
// waits for the host to accept it.
type BookingMode string

const (
	ModeInstant  BookingMode = "instant"
	ModeApproval BookingMode = "approval"
)

func ParseBookingMode(raw string) (BookingMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "instant":
		return ModeInstant, nil
	case "approval", "":
		return ModeApproval, nil
	default:
		return "", ErrInvalidMode
	}
}

type Address struct {
	Line1   string
	City    string
	Region  string
	Country string
	Lat     float64
	Lon     float64
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

func (a Address) Short() string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(a.City) != "" {
		parts = append(parts, a.City)
	}
	if strings.TrimSpace(a.Country) != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

type Listing struct {
	ID            ListingID
	Host          HostID
	Title         string
	Description   string
	Address       Address
	NightlyRate   money.Money
	WeekendRate   money.Money // zero amount means no weekend override
	CleaningFee   money.Money
	ServiceFee    money.Money
	GuestsLimit   int
	Mode          BookingMode
	ImageURL      string
	Photos        []string
	Amenities     []string
	State         ListingState
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

// HasWeekendRate reports whether Friday and Saturday nights carry their own price.
func (l *Listing) HasWeekendRate() bool {
	return !l.WeekendRate.IsZero()
}

// EnsureSameCurrency rejects override rates or fees denominated in a
// different currency than the nightly rate. Zero amounts are ignored.
func EnsureSameCurrency(nightly money.Money, others ...money.Money) error {
	for _, m := range others {
		if !m.IsZero() && m.Currency != nightly.Currency {
			return ErrCurrencyMismatch
		}
	}
	return nil
}

type ListingRepository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateListingParams struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Address     Address
	NightlyRate money.Money
	WeekendRate money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	GuestsLimit int
	Mode        BookingMode
	ImageURL    string
	Photos      []string
	Amenities   []string
	Now         time.Time
}

func NewListing(params CreateListingParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listings: host is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.GuestsLimit < 1 {
		return nil, ErrGuestsLimit
	}
	if params.NightlyRate.Amount <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrNightlyRate
	}
	if params.CleaningFee.Amount < 0 || params.ServiceFee.Amount < 0 || params.WeekendRate.Amount < 0 {
		return nil, ErrNegativeFee
	}
	if err := EnsureSameCurrency(params.NightlyRate, params.WeekendRate, params.CleaningFee, params.ServiceFee); err != nil {
		return nil, err
	}
	mode := params.Mode
	if mode == "" {
		mode = ModeApproval
	}
	if mode != ModeInstant && mode != ModeApproval {
		return nil, ErrInvalidMode
	}

	now := params.Now.UTC()
	listing := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Address:     params.Address,
		NightlyRate: params.NightlyRate,
		WeekendRate: params.WeekendRate,
		CleaningFee: params.CleaningFee,
		ServiceFee:  params.ServiceFee,
		GuestsLimit: params.GuestsLimit,
		Mode:        mode,
		ImageURL:    strings.TrimSpace(params.ImageURL),
		Photos:      append([]string(nil), params.Photos...),
		Amenities:   append([]string(nil), params.Amenities...),
		State:       ListingDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, At: now})
	return listing, nil
}

// Publish moves a draft listing onto the public catalog.
func (l *Listing) Publish(now time.Time) error {
	if l.State == ListingActive {
		return nil
	}
	if !l.Address.Valid() {
		return ErrAddressRequired
	}
	if l.GuestsLimit < 1 {
		return ErrGuestsLimit
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingPublishedEvent{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Suspend(reason string, now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

type UpdateListingParams struct {
	Title       string
	Description string
	Address     Address
	NightlyRate money.Money
	WeekendRate money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	GuestsLimit int
	Mode        BookingMode
	ImageURL    string
	Photos      []string
	Amenities   []string
	Now         time.Time
}

// UpdateAttributes applies a host edit. Bookings created earlier keep the
// prices and snapshot captured at their creation time.
func (l *Listing) UpdateAttributes(params UpdateListingParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.GuestsLimit < 1 {
		return ErrGuestsLimit
	}
	if params.NightlyRate.Amount <= 0 {
		return ErrNightlyRate
	}
	if params.CleaningFee.Amount < 0 || params.ServiceFee.Amount < 0 || params.WeekendRate.Amount < 0 {
		return ErrNegativeFee
	}
	if err := EnsureSameCurrency(params.NightlyRate, params.WeekendRate, params.CleaningFee, params.ServiceFee); err != nil {
		return err
	}
	if params.Mode != ModeInstant && params.Mode != ModeApproval {
		return ErrInvalidMode
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.Address = params.Address
	l.NightlyRate = params.NightlyRate
	l.WeekendRate = params.WeekendRate
	l.CleaningFee = params.CleaningFee
	l.ServiceFee = params.ServiceFee
	l.GuestsLimit = params.GuestsLimit
	l.Mode = params.Mode
	l.ImageURL = strings.TrimSpace(params.ImageURL)
	l.Photos = append([]string(nil), params.Photos...)
	l.Amenities = append([]string(nil), params.Amenities...)
	l.UpdatedAt = now
	l.Record(ListingUpdatedEvent{ListingID: l.ID, At: now})
	return nil
}
