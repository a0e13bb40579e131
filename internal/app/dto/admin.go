package dto

import domainuser "stayhub/internal/domain/user"

type UserProfile struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	PhotoURL string   `json:"photo_url,omitempty"`
	Roles    []string `json:"roles"`
	Blocked  bool     `json:"blocked"`
}

type UserList struct {
	Items []UserProfile `json:"items"`
	Total int           `json:"total"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	return UserProfile{
		ID:       string(u.ID),
		Email:    u.Email,
		Name:     u.Name,
		PhotoURL: u.PhotoURL,
		Roles:    roles,
		Blocked:  u.Blocked,
	}
}

// AdminOverview aggregates denormalized marketplace documents for the
// admin console dashboard.
type AdminOverview struct {
	BookingsByStatus map[string]int   `json:"bookings_by_status"`
	ListingsByState  map[string]int   `json:"listings_by_state"`
	TotalUsers       int              `json:"total_users"`
	RecentBookings   []BookingSummary `json:"recent_bookings"`
}
