package admin

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

const (
	overviewKey  = "admin.overview"
	listUsersKey = "admin.users.list"
	blockUserKey = "admin.users.block"

	recentBookingsLimit = 10
	overviewScanLimit   = 60
)

type OverviewQuery struct{}

func (q OverviewQuery) Key() string { return overviewKey }

// OverviewHandler walks listings and their bookings to build the admin
// dashboard counters. The scan is bounded; it is a console view, not a
// reporting pipeline.
type OverviewHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *OverviewHandler) Handle(ctx context.Context, _ OverviewQuery) (dto.AdminOverview, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AdminOverview{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	overview := dto.AdminOverview{
		BookingsByStatus: map[string]int{},
		ListingsByState:  map[string]int{},
	}

	listingsResult, err := unit.Listings().Search(execCtx, domainlistings.SearchParams{
		States: []domainlistings.ListingState{domainlistings.ListingDraft, domainlistings.ListingActive, domainlistings.ListingSuspended},
		Limit:  overviewScanLimit,
	})
	if err != nil {
		return dto.AdminOverview{}, err
	}

	recent := make([]dto.BookingSummary, 0)
	for _, listing := range listingsResult.Items {
		overview.ListingsByState[string(listing.State)]++
		bookings, err := unit.Bookings().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.AdminOverview{}, err
		}
		for _, b := range bookings {
			overview.BookingsByStatus[string(b.Status)]++
			recent = append(recent, dto.MapBookingSummary(b))
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentBookingsLimit {
		recent = recent[:recentBookingsLimit]
	}
	overview.RecentBookings = recent

	_, total, err := unit.Users().List(execCtx, domainuser.ListParams{Limit: 1})
	if err != nil {
		return dto.AdminOverview{}, err
	}
	overview.TotalUsers = total

	return overview, nil
}

type ListUsersQuery struct {
	Query  string
	Limit  int
	Offset int
}

func (q ListUsersQuery) Key() string { return listUsersKey }

type ListUsersHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (dto.UserList, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserList{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	users, total, err := unit.Users().List(execCtx, domainuser.ListParams{
		Query:  q.Query,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.UserList{}, err
	}
	items := make([]dto.UserProfile, 0, len(users))
	for _, u := range users {
		items = append(items, dto.MapUserProfile(u))
	}
	return dto.UserList{Items: items, Total: total}, nil
}

type BlockUserCommand struct {
	UserID string
}

func (c BlockUserCommand) Key() string { return blockUserKey }

type BlockUserHandler struct {
	Logger *slog.Logger
}

func (h *BlockUserHandler) Handle(ctx context.Context, cmd BlockUserCommand) (dto.UserProfile, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return dto.UserProfile{}, uow.ErrUnitOfWorkMissing
	}
	u, err := unit.Users().ByID(ctx, domainuser.ID(cmd.UserID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	u.Block(time.Now())
	if err := unit.Users().Save(ctx, u); err != nil {
		return dto.UserProfile{}, err
	}
	if h.Logger != nil {
		h.Logger.Warn("user blocked", "user_id", cmd.UserID)
	}
	return dto.MapUserProfile(u), nil
}

var (
	_ queries.Handler[OverviewQuery, dto.AdminOverview]   = (*OverviewHandler)(nil)
	_ queries.Handler[ListUsersQuery, dto.UserList]       = (*ListUsersHandler)(nil)
	_ commands.Handler[BlockUserCommand, dto.UserProfile] = (*BlockUserHandler)(nil)
)
