package me

import (
	"context"
	"errors"
	"sort"
	"strings"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/handlers/support"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainuser "stayhub/internal/domain/user"
)

const (
	listMyBookingsKey = "me.bookings.list"
	getMyProfileKey   = "me.profile"
)

type ListMyBookingsQuery struct {
	GuestID string
	Status  string
}

func (q ListMyBookingsQuery) Key() string { return listMyBookingsKey }

// ListMyBookingsHandler returns the trip list for a guest, newest first,
// rendered from the snapshot data frozen at booking time.
type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.BookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.BookingCollection{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	statusFilter := strings.ToLower(strings.TrimSpace(q.Status))
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		if statusFilter != "" && string(b.Status) != statusFilter {
			continue
		}
		items = append(items, dto.MapBookingSummary(b))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return dto.BookingCollection{Items: items}, nil
}

type GetMyProfileQuery struct {
	UserID string
}

func (q GetMyProfileQuery) Key() string { return getMyProfileKey }

type GetMyProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetMyProfileHandler) Handle(ctx context.Context, q GetMyProfileQuery) (dto.UserProfile, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, err := unit.Users().ByID(execCtx, domainuser.ID(q.UserID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	return dto.MapUserProfile(u), nil
}

var (
	_ queries.Handler[ListMyBookingsQuery, dto.BookingCollection] = (*ListMyBookingsHandler)(nil)
	_ queries.Handler[GetMyProfileQuery, dto.UserProfile]         = (*GetMyProfileHandler)(nil)
)
