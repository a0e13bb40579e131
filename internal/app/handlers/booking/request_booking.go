package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainpricing "stayhub/internal/domain/pricing"
	domainrange "stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	domainuser "stayhub/internal/domain/user"
)

const requestBookingKey = "booking.request"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type RequestBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Payment         string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
}

// RequestBookingHandler prices and persists a new booking. The insert goes
// through the repository's exclusive path, which re-validates the
// no-overlap invariant under a serialized write guard; the advisory
// availability pre-check alone is not trusted.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	if cmd.GuestID == "" {
		return nil, domainbooking.ErrGuestRequired
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	quote, err := domainpricing.ComputeQuote(listing, cmd.CheckIn, cmd.CheckOut, cmd.Guests)
	if err != nil {
		return nil, err
	}
	dr := domainrange.DateRange{CheckIn: quote.CheckIn, CheckOut: quote.CheckOut}
	now := time.Now().UTC()

	guest, err := unit.Users().ByID(ctx, domainuser.ID(cmd.GuestID))
	if err != nil {
		return nil, err
	}
	// Host profile is best effort: a missing host only costs snapshot fields.
	host, err := unit.Users().ByID(ctx, domainuser.ID(listing.Host))
	if err != nil {
		if !errors.Is(err, domainuser.ErrNotFound) {
			return nil, err
		}
		host = nil
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		Listing:   listing,
		GuestID:   cmd.GuestID,
		Range:     dr,
		Guests:    cmd.Guests,
		Price:     quote,
		Payment:   cmd.Payment,
		Snapshot:  domainbooking.NewStaySnapshot(listing, guest, host),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().CreateExclusive(ctx, b); err != nil {
		if errors.Is(err, domainbooking.ErrDateConflict) {
			prevented := domainbooking.DoubleBookingPrevented{ListingID: listing.ID, Range: dr, At: now}
			_ = outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), []events.DomainEvent{prevented})
			if h.Logger != nil {
				h.Logger.Warn("double booking prevented", "listing_id", listing.ID, "guest_id", cmd.GuestID)
			}
		}
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestBookingResult{
		BookingID: string(b.ID),
		Status:    string(b.Status),
		Total:     b.Price.Total.Amount,
		Currency:  b.Price.Total.Currency,
	}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
