package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

// ListingRepository is an in-memory implementation for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or domainlistings.ErrNotFound.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return listing, nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing.Version++
	r.items[listing.ID] = listing
	return nil
}

// Search returns listings that satisfy provided filters.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlistings.SearchResult{}, ctx.Err()
			default:
			}
		}

		if opts.OnlyActive && listing.State != domainlistings.ListingActive {
			continue
		}
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if len(opts.States) > 0 && !stateIncluded(listing.State, opts.States) {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.Address.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Address.Country, opts.Country) {
			continue
		}
		if opts.LocationQuery != "" && !matchLocation(listing, opts.LocationQuery) {
			continue
		}
		if opts.MinGuests > 0 && listing.GuestsLimit < opts.MinGuests {
			continue
		}
		if opts.PriceMin > 0 && listing.NightlyRate.Amount < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && listing.NightlyRate.Amount > opts.PriceMax {
			continue
		}
		if opts.Mode != "" && listing.Mode != opts.Mode {
			continue
		}
		if !tokensMatch(listing.Amenities, opts.Amenities) {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].NightlyRate.Amount > matches[j].NightlyRate.Amount
		case domainlistings.SortByNewest:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return domainlistings.SearchResult{
		Items: matches[start:end],
		Total: total,
	}, nil
}

func tokensMatch(values []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(values) == 0 {
		return false
	}
	index := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value == "" {
			continue
		}
		index[value] = struct{}{}
	}
	for _, token := range required {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func matchLocation(listing *domainlistings.Listing, needle string) bool {
	if listing == nil {
		return false
	}
	full := strings.ToLower(strings.Join([]string{
		listing.Address.City,
		listing.Address.Country,
		listing.Address.Line1,
		listing.Title,
	}, " "))
	return strings.Contains(full, needle)
}

func stateIncluded(state domainlistings.ListingState, allowed []domainlistings.ListingState) bool {
	for _, candidate := range allowed {
		if state == candidate {
			return true
		}
	}
	return false
}

// BookingRepository stores bookings in memory. Writes that could create a
// double booking are serialized behind a per-repository write lock, so the
// overlap re-check and the insert are a single atomic step.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return booking, nil
}

// CreateExclusive inserts a new booking. While the write lock is held it
// re-validates the no-overlap invariant against confirmed bookings of the
// same listing, so two concurrent requests for the same dates cannot both
// land confirmed.
func (r *BookingRepository) CreateExclusive(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[booking.ID]; exists {
		return errors.New("memory: booking id already used")
	}
	if booking.Status == domainbooking.StatusConfirmed {
		confirmed := r.confirmedLocked(booking.ListingID)
		if hit := domainbooking.FirstConflict(confirmed, booking.Range); hit != nil {
			return domainbooking.ErrDateConflict
		}
	}
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

// Save stores the current booking state. A transition into confirmed runs
// the same overlap re-check as CreateExclusive.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.Status == domainbooking.StatusConfirmed {
		confirmed := r.confirmedLocked(booking.ListingID)
		if hit := domainbooking.FirstConflict(confirmed, booking.Range); hit != nil && hit.ID != booking.ID {
			return domainbooking.ErrDateConflict
		}
	}
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	id := strings.TrimSpace(guestID)
	if id == "" {
		return nil, errors.New("memory: guest id required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.GuestID == id {
			matches = append(matches, booking)
		}
	}
	sortByCreated(matches)
	return matches, nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID {
			matches = append(matches, booking)
		}
	}
	sortByCreated(matches)
	return matches, nil
}

func (r *BookingRepository) ConfirmedByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.confirmedLocked(listingID) {
		matches = append(matches, booking)
	}
	sortByCreated(matches)
	return matches, nil
}

func (r *BookingRepository) confirmedLocked(listingID domainlistings.ListingID) []*domainbooking.Booking {
	confirmed := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ListingID == listingID && booking.Status == domainbooking.StatusConfirmed {
			confirmed = append(confirmed, booking)
		}
	}
	return confirmed
}

func sortByCreated(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

var (
	_ domainlistings.ListingRepository = (*ListingRepository)(nil)
	_ domainbooking.Repository         = (*BookingRepository)(nil)
)
