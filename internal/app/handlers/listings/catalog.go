package listings

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
)

const (
	searchCatalogKey = "listings.catalog"
	getListingKey    = "listings.get"
)

type SearchCatalogQuery struct {
	City          string
	Country       string
	LocationQuery string
	Amenities     []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	Mode          string
	Sort          string
	Limit         int
	Offset        int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler serves the public catalog. Only active listings
// are ever returned here regardless of the filters supplied.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlistings.SearchParams{
		City:          q.City,
		Country:       q.Country,
		LocationQuery: q.LocationQuery,
		Amenities:     q.Amenities,
		MinGuests:     q.MinGuests,
		PriceMin:      q.PriceMin,
		PriceMax:      q.PriceMax,
		Sort:          domainlistings.CatalogSort(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
		OnlyActive:    true,
	}
	if q.Mode != "" {
		mode, err := domainlistings.ParseBookingMode(q.Mode)
		if err != nil {
			return dto.ListingCatalog{}, err
		}
		params.Mode = mode
	}

	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	items := make([]dto.ListingSummary, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListingSummary(l))
	}
	return dto.ListingCatalog{Items: items, Total: result.Total}, nil
}

type GetListingQuery struct {
	ListingID string
	// When ViewerID owns the listing the draft and suspended states are
	// visible too; everyone else sees active listings only.
	ViewerID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingDetail, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if listing.State != domainlistings.ListingActive && string(listing.Host) != q.ViewerID {
		return dto.ListingDetail{}, domainlistings.ErrNotFound
	}
	return dto.MapListingDetail(listing), nil
}

var (
	_ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
	_ queries.Handler[GetListingQuery, dto.ListingDetail]     = (*GetListingHandler)(nil)
)
