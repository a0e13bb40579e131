package booking

import (
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/user"
)

// StaySnapshot is the denormalized display data copied onto a booking at
// creation time. It is a deliberate read optimization: booking lists render
// without joining listings or profiles. Snapshots are never refreshed when
// the source listing or profile changes later; staleness is by contract.
type StaySnapshot struct {
	ListingTitle string
	Location     string
	ImageURL     string
	GuestName    string
	GuestPhoto   string
	HostName     string
	HostPhoto    string
}

func NewStaySnapshot(listing *listings.Listing, guest, host *user.User) StaySnapshot {
	snap := StaySnapshot{}
	if listing != nil {
		snap.ListingTitle = listing.Title
		snap.Location = listing.Address.Short()
		snap.ImageURL = listing.ImageURL
	}
	if guest != nil {
		snap.GuestName = guest.Name
		snap.GuestPhoto = guest.PhotoURL
	}
	if host != nil {
		snap.HostName = host.Name
		snap.HostPhoto = host.PhotoURL
	}
	return snap
}
