package booking

import (
	"context"
	"time"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	domainpricing "stayhub/internal/domain/pricing"
)

const quoteStayKey = "booking.quote"

type QuoteStayQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

// QuoteStayHandler exposes the pure quote computation over a listing
// lookup. It has no side effects; resubmitting identical inputs yields an
// identical breakdown.
type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.QuoteDTO, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	quote, err := domainpricing.ComputeQuote(listing, q.CheckIn, q.CheckOut, q.Guests)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	return dto.MapQuote(quote), nil
}

var _ queries.Handler[QuoteStayQuery, dto.QuoteDTO] = (*QuoteStayHandler)(nil)
