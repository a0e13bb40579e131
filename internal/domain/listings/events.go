package listings

import "time"

type ListingCreatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingPublishedEvent struct {
	ListingID ListingID `json:"listing_id"`
	HostID    HostID    `json:"host_id"`
	At        time.Time `json:"at"`
}

func (e ListingPublishedEvent) EventName() string     { return "listing.published" }
func (e ListingPublishedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingPublishedEvent) OccurredAt() time.Time { return e.At }

type ListingSuspendedEvent struct {
	ListingID ListingID `json:"listing_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

func (e ListingSuspendedEvent) EventName() string     { return "listing.suspended" }
func (e ListingSuspendedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingSuspendedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdatedEvent struct {
	ListingID ListingID `json:"listing_id"`
	At        time.Time `json:"at"`
}

func (e ListingUpdatedEvent) EventName() string     { return "listing.updated" }
func (e ListingUpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdatedEvent) OccurredAt() time.Time { return e.At }
