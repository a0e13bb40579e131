package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
	domainonboarding "stayhub/internal/domain/onboarding"
)

// DraftStore persists onboarding wizard drafts keyed by host id.
type DraftStore struct {
	col *mongo.Collection
}

func NewDraftStore(db *mongo.Database) *DraftStore {
	return &DraftStore{col: db.Collection("onboarding_drafts")}
}

func (s *DraftStore) Load(ctx context.Context, hostID string) (*domainonboarding.Draft, error) {
	var doc draftDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": hostID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainonboarding.ErrDraftNotFound
		}
		return nil, err
	}
	return doc.toDraft(), nil
}

func (s *DraftStore) Save(ctx context.Context, draft *domainonboarding.Draft) error {
	if draft == nil || draft.HostID == "" {
		return domainonboarding.ErrHostRequired
	}
	doc := newDraftDocument(draft)
	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": doc.HostID}, bson.M{"$set": doc}, opts)
	return err
}

func (s *DraftStore) Clear(ctx context.Context, hostID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": hostID})
	return err
}

type draftDocument struct {
	HostID      string          `bson:"_id"`
	Step        string          `bson:"step"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	GuestsLimit int             `bson:"guests_limit"`
	Amenities   []string        `bson:"amenities"`
	Address     addressDocument `bson:"address"`
	NightlyRate moneyDocument   `bson:"nightly_rate"`
	WeekendRate moneyDocument   `bson:"weekend_rate"`
	CleaningFee moneyDocument   `bson:"cleaning_fee"`
	ServiceFee  moneyDocument   `bson:"service_fee"`
	Mode        string          `bson:"mode"`
	Photos      []string        `bson:"photos"`
	UpdatedAt   int64           `bson:"updated_at"`
}

func newDraftDocument(d *domainonboarding.Draft) draftDocument {
	return draftDocument{
		HostID:      d.HostID,
		Step:        string(d.Step),
		Title:       d.Property.Title,
		Description: d.Property.Description,
		GuestsLimit: d.Property.GuestsLimit,
		Amenities:   d.Property.Amenities,
		Address: addressDocument{
			Line1:        d.Location.Line1,
			City:         d.Location.City,
			CityLower:    lower(d.Location.City),
			Region:       d.Location.Region,
			Country:      d.Location.Country,
			CountryLower: lower(d.Location.Country),
			Lat:          d.Location.Lat,
			Lon:          d.Location.Lon,
		},
		NightlyRate: newMoneyDocument(d.Pricing.NightlyRate),
		WeekendRate: newMoneyDocument(d.Pricing.WeekendRate),
		CleaningFee: newMoneyDocument(d.Pricing.CleaningFee),
		ServiceFee:  newMoneyDocument(d.Pricing.ServiceFee),
		Mode:        string(d.Pricing.Mode),
		Photos:      d.Photos,
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
	}
}

func (d draftDocument) toDraft() *domainonboarding.Draft {
	return &domainonboarding.Draft{
		HostID: d.HostID,
		Step:   domainonboarding.Step(d.Step),
		Property: domainonboarding.PropertyDetails{
			Title:       d.Title,
			Description: d.Description,
			GuestsLimit: d.GuestsLimit,
			Amenities:   d.Amenities,
		},
		Location: domainlistings.Address{
			Line1:   d.Address.Line1,
			City:    d.Address.City,
			Region:  d.Address.Region,
			Country: d.Address.Country,
			Lat:     d.Address.Lat,
			Lon:     d.Address.Lon,
		},
		Pricing: domainonboarding.PricingDetails{
			NightlyRate: d.NightlyRate.toMoney(),
			WeekendRate: d.WeekendRate.toMoney(),
			CleaningFee: d.CleaningFee.toMoney(),
			ServiceFee:  d.ServiceFee.toMoney(),
			Mode:        domainlistings.BookingMode(d.Mode),
		},
		Photos:    d.Photos,
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

var _ domainonboarding.DraftStore = (*DraftStore)(nil)
