package booking

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

const (
	listHostBookingsKey   = "host.bookings.list"
	confirmHostBookingKey = "host.bookings.confirm"
	declineHostBookingKey = "host.bookings.decline"

	hostListingsPageSize   = 60
	allStatusesFilterValue = "all"
)

var ErrBookingNotOwned = errors.New("booking: not owned by host")

type ListHostBookingsQuery struct {
	HostID string
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.BookingCollection{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	statusFilter := strings.ToLower(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = string(domainbooking.StatusPending)
	}
	allStatuses := statusFilter == allStatusesFilterValue

	// Walk every listing page; a host can own more than one page.
	items := make([]dto.BookingSummary, 0)
	for offset := 0; ; {
		page, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
			Host:   domainlistings.HostID(hostID),
			Limit:  hostListingsPageSize,
			Offset: offset,
		})
		if err != nil {
			return dto.BookingCollection{}, err
		}
		for _, listing := range page.Items {
			bookings, err := unit.Bookings().ListByListing(execCtx, listing.ID)
			if err != nil {
				return dto.BookingCollection{}, err
			}
			for _, b := range bookings {
				if !allStatuses && string(b.Status) != statusFilter {
					continue
				}
				items = append(items, dto.MapBookingSummary(b))
			}
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items), "status", statusFilter)
	}
	return dto.BookingCollection{Items: items}, nil
}

type ConfirmHostBookingCommand struct {
	HostID    string
	BookingID string
}

func (c ConfirmHostBookingCommand) Key() string { return confirmHostBookingKey }

type DeclineHostBookingCommand struct {
	HostID    string
	BookingID string
	Reason    string
}

func (c DeclineHostBookingCommand) Key() string { return declineHostBookingKey }

type HostBookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ConfirmHostBookingHandler flips pending -> confirmed. Because the
// no-overlap invariant is not enforced atomically at request time for
// approval-mode listings, it re-validates against the other confirmed
// bookings inside the unit of work before saving.
type ConfirmHostBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ConfirmHostBookingHandler) Handle(ctx context.Context, cmd ConfirmHostBookingCommand) (*HostBookingActionResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := loadOwnedBooking(ctx, unit, cmd.BookingID, cmd.HostID)
	if err != nil {
		return nil, err
	}

	confirmed, err := unit.Bookings().ConfirmedByListing(ctx, b.ListingID)
	if err != nil {
		return nil, err
	}
	if hit := domainbooking.FirstConflict(confirmed, b.Range); hit != nil && hit.ID != b.ID {
		return nil, domainbooking.ErrDateConflict
	}

	if err := b.Confirm(time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking confirmed by host", "booking_id", b.ID, "host_id", cmd.HostID)
	}
	return &HostBookingActionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

type DeclineHostBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DeclineHostBookingHandler) Handle(ctx context.Context, cmd DeclineHostBookingCommand) (*HostBookingActionResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := loadOwnedBooking(ctx, unit, cmd.BookingID, cmd.HostID)
	if err != nil {
		return nil, err
	}
	if err := b.Decline(cmd.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, b); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking declined by host", "booking_id", b.ID, "host_id", cmd.HostID)
	}
	return &HostBookingActionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func loadOwnedBooking(ctx context.Context, unit uow.UnitOfWork, bookingID, hostID string) (*domainbooking.Booking, error) {
	hostID = strings.TrimSpace(hostID)
	if hostID == "" {
		return nil, errors.New("host id is required")
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	if b.HostID != hostID {
		return nil, ErrBookingNotOwned
	}
	return b, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, b *domainbooking.Booking) error {
	pending := b.PendingEvents()
	b.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var (
	_ queries.Handler[ListHostBookingsQuery, dto.BookingCollection]         = (*ListHostBookingsHandler)(nil)
	_ commands.Handler[ConfirmHostBookingCommand, *HostBookingActionResult] = (*ConfirmHostBookingHandler)(nil)
	_ commands.Handler[DeclineHostBookingCommand, *HostBookingActionResult] = (*DeclineHostBookingHandler)(nil)
)
