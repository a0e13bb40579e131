package listings

import "strings"

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByPriceAsc  CatalogSort = "price_asc"
	SortByPriceDesc CatalogSort = "price_desc"
	SortByNewest    CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	Host          HostID
	States        []ListingState
	City          string
	Country       string
	LocationQuery string
	Amenities     []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	Mode          BookingMode
	Sort          CatalogSort
	Limit         int
	Offset        int
	OnlyActive    bool
}

type SearchResult struct {
	Items []*Listing
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	normalized.Country = strings.TrimSpace(strings.ToLower(normalized.Country))
	normalized.LocationQuery = strings.TrimSpace(strings.ToLower(normalized.LocationQuery))
	normalized.Amenities = normalizeTokens(normalized.Amenities)
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax > 0 && normalized.PriceMax < normalized.PriceMin {
		normalized.PriceMax = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch normalized.Sort {
	case SortByPriceAsc, SortByPriceDesc, SortByNewest:
	default:
		normalized.Sort = SortByPriceAsc
	}
	return normalized
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
