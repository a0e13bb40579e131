package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/listings"
	domainpricing "stayhub/internal/domain/pricing"
	domainrange "stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col    *mongo.Collection
	guards *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "status", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col, guards: db.Collection("booking_guards")}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// CreateExclusive inserts a new booking. Confirmed inserts bump the
// listing's guard document first, so two transactions validating the same
// listing write-conflict instead of both committing against the same
// snapshot; the loser aborts and retries against the winner's booking.
func (r *BookingRepository) CreateExclusive(ctx context.Context, b *domainbooking.Booking) error {
	if b.Status == domainbooking.StatusConfirmed {
		if err := r.touchGuard(ctx, b.ListingID); err != nil {
			return err
		}
		conflict, err := r.hasConfirmedOverlap(ctx, b.ListingID, b.Range, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return domainbooking.ErrDateConflict
		}
	}
	doc := newBookingDocument(b)
	doc.Version = b.Version + 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	b.Version = doc.Version
	return nil
}

// Save updates with an optimistic version filter. A transition into
// confirmed re-validates the overlap invariant first.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b.Status == domainbooking.StatusConfirmed {
		if err := r.touchGuard(ctx, b.ListingID); err != nil {
			return err
		}
		conflict, err := r.hasConfirmedOverlap(ctx, b.ListingID, b.Range, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return domainbooking.ErrDateConflict
		}
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) ConfirmedByListing(ctx context.Context, listingID listings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID), "status": string(domainbooking.StatusConfirmed)})
}

// touchGuard writes the per-listing guard document inside the current
// transaction. Transactions only conflict on documents both sides write,
// so without this shared write two overlapping confirmed inserts would
// each pass the snapshot re-query and both commit.
func (r *BookingRepository) touchGuard(ctx context.Context, listingID listings.ListingID) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.guards.UpdateOne(ctx, bson.M{"_id": string(listingID)}, bson.M{"$inc": bson.M{"rev": 1}}, opts)
	return err
}

func (r *BookingRepository) hasConfirmedOverlap(ctx context.Context, listingID listings.ListingID, dr domainrange.DateRange, excludeID domainbooking.BookingID) (bool, error) {
	filter := bson.M{
		"_id":             bson.M{"$ne": string(excludeID)},
		"listing_id":      string(listingID),
		"status":          string(domainbooking.StatusConfirmed),
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	count, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

type quoteDocument struct {
	CheckIn     int64         `bson:"check_in"`
	CheckOut    int64         `bson:"check_out"`
	Guests      int           `bson:"guests"`
	Nights      int           `bson:"nights"`
	Subtotal    moneyDocument `bson:"subtotal"`
	CleaningFee moneyDocument `bson:"cleaning_fee"`
	ServiceFee  moneyDocument `bson:"service_fee"`
	Total       moneyDocument `bson:"total"`
}

type snapshotDocument struct {
	ListingTitle string `bson:"listing_title"`
	Location     string `bson:"location"`
	ImageURL     string `bson:"image_url"`
	GuestName    string `bson:"guest_name"`
	GuestPhoto   string `bson:"guest_photo"`
	HostName     string `bson:"host_name"`
	HostPhoto    string `bson:"host_photo"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type bookingDocument struct {
	ID        string           `bson:"_id"`
	ListingID string           `bson:"listing_id"`
	GuestID   string           `bson:"guest_id"`
	HostID    string           `bson:"host_id"`
	Range     rangeDocument    `bson:"range"`
	Guests    int              `bson:"guests"`
	Price     quoteDocument    `bson:"price"`
	Status    string           `bson:"status"`
	Payment   string           `bson:"payment"`
	Snapshot  snapshotDocument `bson:"snapshot"`
	CreatedAt int64            `bson:"created_at"`
	UpdatedAt int64            `bson:"updated_at"`
	Version   int64            `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		HostID:    b.HostID,
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:    b.Guests,
		Price: quoteDocument{
			CheckIn:     b.Price.CheckIn.UnixMilli(),
			CheckOut:    b.Price.CheckOut.UnixMilli(),
			Guests:      b.Price.Guests,
			Nights:      b.Price.Nights,
			Subtotal:    newMoneyDocument(b.Price.Subtotal),
			CleaningFee: newMoneyDocument(b.Price.CleaningFee),
			ServiceFee:  newMoneyDocument(b.Price.ServiceFee),
			Total:       newMoneyDocument(b.Price.Total),
		},
		Status:  string(b.Status),
		Payment: b.Payment,
		Snapshot: snapshotDocument{
			ListingTitle: b.Snapshot.ListingTitle,
			Location:     b.Snapshot.Location,
			ImageURL:     b.Snapshot.ImageURL,
			GuestName:    b.Snapshot.GuestName,
			GuestPhoto:   b.Snapshot.GuestPhoto,
			HostName:     b.Snapshot.HostName,
			HostPhoto:    b.Snapshot.HostPhoto,
		},
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		HostID:    d.HostID,
		Range:     domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:    d.Guests,
		Price: domainpricing.Quote{
			CheckIn:     timestampToTime(d.Price.CheckIn),
			CheckOut:    timestampToTime(d.Price.CheckOut),
			Guests:      d.Price.Guests,
			Nights:      d.Price.Nights,
			Subtotal:    d.Price.Subtotal.toMoney(),
			CleaningFee: d.Price.CleaningFee.toMoney(),
			ServiceFee:  d.Price.ServiceFee.toMoney(),
			Total:       d.Price.Total.toMoney(),
		},
		Status:  domainbooking.Status(d.Status),
		Payment: d.Payment,
		Snapshot: domainbooking.StaySnapshot{
			ListingTitle: d.Snapshot.ListingTitle,
			Location:     d.Snapshot.Location,
			ImageURL:     d.Snapshot.ImageURL,
			GuestName:    d.Snapshot.GuestName,
			GuestPhoto:   d.Snapshot.GuestPhoto,
			HostName:     d.Snapshot.HostName,
			HostPhoto:    d.Snapshot.HostPhoto,
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
