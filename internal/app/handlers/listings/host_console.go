package listings

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

const (
	listHostListingsKey = "host.listings.list"
	updateListingKey    = "host.listings.update"
	suspendListingKey   = "host.listings.suspend"
)

var ErrListingNotOwned = errors.New("listings: not owned by host")

type ListHostListingsQuery struct {
	HostID string
	Limit  int
	Offset int
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.ListingCatalog, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	result, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		Host:   domainlistings.HostID(q.HostID),
		Sort:   domainlistings.SortByNewest,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	items := make([]dto.ListingSummary, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, dto.MapListingSummary(l))
	}
	return dto.ListingCatalog{Items: items, Total: result.Total}, nil
}

type MoneyInput struct {
	Amount   int64
	Currency string
}

func (m MoneyInput) toMoney() money.Money {
	return money.Money{Amount: m.Amount, Currency: m.Currency}
}

type UpdateListingCommand struct {
	HostID      string
	ListingID   string
	Title       string
	Description string
	Address     domainlistings.Address
	NightlyRate MoneyInput
	WeekendRate MoneyInput
	CleaningFee MoneyInput
	ServiceFee  MoneyInput
	GuestsLimit int
	Mode        string
	ImageURL    string
	Photos      []string
	Amenities   []string
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

// UpdateListingHandler applies a host edit. Existing bookings keep the
// prices and snapshot frozen at the time they were created.
type UpdateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (dto.ListingDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return dto.ListingDetail{}, uow.ErrUnitOfWorkMissing
	}
	listing, err := loadOwnedListing(ctx, unit, cmd.ListingID, cmd.HostID)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	mode, err := domainlistings.ParseBookingMode(cmd.Mode)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	err = listing.UpdateAttributes(domainlistings.UpdateListingParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		Address:     cmd.Address,
		NightlyRate: cmd.NightlyRate.toMoney(),
		WeekendRate: cmd.WeekendRate.toMoney(),
		CleaningFee: cmd.CleaningFee.toMoney(),
		ServiceFee:  cmd.ServiceFee.toMoney(),
		GuestsLimit: cmd.GuestsLimit,
		Mode:        mode,
		ImageURL:    cmd.ImageURL,
		Photos:      cmd.Photos,
		Amenities:   cmd.Amenities,
		Now:         time.Now(),
	})
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if err := drainListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing updated", "listing_id", listing.ID, "host_id", cmd.HostID)
	}
	return dto.MapListingDetail(listing), nil
}

type SuspendListingCommand struct {
	ListingID string
	Reason    string
}

func (c SuspendListingCommand) Key() string { return suspendListingKey }

type SuspendListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *SuspendListingHandler) Handle(ctx context.Context, cmd SuspendListingCommand) (dto.ListingDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return dto.ListingDetail{}, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.ListingDetail{}, err
	}
	if err := listing.Suspend(cmd.Reason, time.Now()); err != nil {
		return dto.ListingDetail{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if err := drainListingEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.ListingDetail{}, err
	}
	if h.Logger != nil {
		h.Logger.Warn("listing suspended", "listing_id", listing.ID, "reason", cmd.Reason)
	}
	return dto.MapListingDetail(listing), nil
}

func loadOwnedListing(ctx context.Context, unit uow.UnitOfWork, listingID, hostID string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, err
	}
	if string(listing.Host) != hostID {
		return nil, ErrListingNotOwned
	}
	return listing, nil
}

func drainListingEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, l *domainlistings.Listing) error {
	pending := l.PendingEvents()
	l.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var (
	_ queries.Handler[ListHostListingsQuery, dto.ListingCatalog] = (*ListHostListingsHandler)(nil)
	_ commands.Handler[UpdateListingCommand, dto.ListingDetail]  = (*UpdateListingHandler)(nil)
	_ commands.Handler[SuspendListingCommand, dto.ListingDetail] = (*SuspendListingHandler)(nil)
)
