package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "host", Value: 1}, {Key: "state", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	doc.Version = listing.Version + 1
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
	listing.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.OnlyActive {
		filter["state"] = string(domainlistings.ListingActive)
	} else if len(opts.States) > 0 {
		states := make([]string, 0, len(opts.States))
		for _, s := range opts.States {
			states = append(states, string(s))
		}
		filter["state"] = bson.M{"$in": states}
	}
	if opts.Host != "" {
		filter["host"] = string(opts.Host)
	}
	if opts.City != "" {
		filter["address.city_lower"] = opts.City
	}
	if opts.Country != "" {
		filter["address.country_lower"] = opts.Country
	}
	if opts.MinGuests > 0 {
		filter["guests_limit"] = bson.M{"$gte": opts.MinGuests}
	}
	price := bson.M{}
	if opts.PriceMin > 0 {
		price["$gte"] = opts.PriceMin
	}
	if opts.PriceMax > 0 {
		price["$lte"] = opts.PriceMax
	}
	if len(price) > 0 {
		filter["nightly_rate.amount"] = price
	}
	if opts.Mode != "" {
		filter["mode"] = string(opts.Mode)
	}
	if len(opts.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": opts.Amenities}
	}
	if opts.LocationQuery != "" {
		filter["$or"] = bson.A{
			bson.M{"address.city_lower": bson.M{"$regex": opts.LocationQuery}},
			bson.M{"address.country_lower": bson.M{"$regex": opts.LocationQuery}},
			bson.M{"title_lower": bson.M{"$regex": opts.LocationQuery}},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	var sortDoc bson.D
	switch opts.Sort {
	case domainlistings.SortByPriceDesc:
		sortDoc = bson.D{{Key: "nightly_rate.amount", Value: -1}}
	case domainlistings.SortByNewest:
		sortDoc = bson.D{{Key: "created_at", Value: -1}}
	default:
		sortDoc = bson.D{{Key: "nightly_rate.amount", Value: 1}}
	}
	findOpts := options.Find().
		SetSort(sortDoc).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainlistings.Listing, 0, opts.Limit)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

type addressDocument struct {
	Line1        string  `bson:"line1"`
	City         string  `bson:"city"`
	CityLower    string  `bson:"city_lower"`
	Region       string  `bson:"region"`
	Country      string  `bson:"country"`
	CountryLower string  `bson:"country_lower"`
	Lat          float64 `bson:"lat"`
	Lon          float64 `bson:"lon"`
}

type listingDocument struct {
	ID          string          `bson:"_id"`
	Host        string          `bson:"host"`
	Title       string          `bson:"title"`
	TitleLower  string          `bson:"title_lower"`
	Description string          `bson:"description"`
	Address     addressDocument `bson:"address"`
	NightlyRate moneyDocument   `bson:"nightly_rate"`
	WeekendRate moneyDocument   `bson:"weekend_rate"`
	CleaningFee moneyDocument   `bson:"cleaning_fee"`
	ServiceFee  moneyDocument   `bson:"service_fee"`
	GuestsLimit int             `bson:"guests_limit"`
	Mode        string          `bson:"mode"`
	ImageURL    string          `bson:"image_url"`
	Photos      []string        `bson:"photos"`
	Amenities   []string        `bson:"amenities"`
	State       string          `bson:"state"`
	CreatedAt   int64           `bson:"created_at"`
	UpdatedAt   int64           `bson:"updated_at"`
	Version     int64           `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		Host:        string(l.Host),
		Title:       l.Title,
		TitleLower:  lower(l.Title),
		Description: l.Description,
		Address: addressDocument{
			Line1:        l.Address.Line1,
			City:         l.Address.City,
			CityLower:    lower(l.Address.City),
			Region:       l.Address.Region,
			Country:      l.Address.Country,
			CountryLower: lower(l.Address.Country),
			Lat:          l.Address.Lat,
			Lon:          l.Address.Lon,
		},
		NightlyRate: newMoneyDocument(l.NightlyRate),
		WeekendRate: newMoneyDocument(l.WeekendRate),
		CleaningFee: newMoneyDocument(l.CleaningFee),
		ServiceFee:  newMoneyDocument(l.ServiceFee),
		GuestsLimit: l.GuestsLimit,
		Mode:        string(l.Mode),
		ImageURL:    l.ImageURL,
		Photos:      l.Photos,
		Amenities:   l.Amenities,
		State:       string(l.State),
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Address: domainlistings.Address{
			Line1:   d.Address.Line1,
			City:    d.Address.City,
			Region:  d.Address.Region,
			Country: d.Address.Country,
			Lat:     d.Address.Lat,
			Lon:     d.Address.Lon,
		},
		NightlyRate: d.NightlyRate.toMoney(),
		WeekendRate: d.WeekendRate.toMoney(),
		CleaningFee: d.CleaningFee.toMoney(),
		ServiceFee:  d.ServiceFee.toMoney(),
		GuestsLimit: d.GuestsLimit,
		Mode:        domainlistings.BookingMode(d.Mode),
		ImageURL:    d.ImageURL,
		Photos:      d.Photos,
		Amenities:   d.Amenities,
		State:       domainlistings.ListingState(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var _ domainlistings.ListingRepository = (*ListingRepository)(nil)
