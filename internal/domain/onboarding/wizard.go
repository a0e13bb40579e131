package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrDraftNotFound = errors.New("onboarding: draft not found")
	ErrWrongStep     = errors.New("onboarding: payload does not match the current step")
	ErrNotReady      = errors.New("onboarding: draft has unfinished steps")
	ErrHostRequired  = errors.New("onboarding: host id required")
	ErrAtFirstStep   = errors.New("onboarding: already at the first step")
	ErrStoreRequired = errors.New("onboarding: draft store required")
)

// Step identifies one screen of the host onboarding flow. Steps are
// completed strictly in order; going back is always allowed.
type Step string

const (
	StepProperty Step = "property"
	StepLocation Step = "location"
	StepPricing  Step = "pricing"
	StepPhotos   Step = "photos"
	StepReview   Step = "review"
)

var stepOrder = []Step{StepProperty, StepLocation, StepPricing, StepPhotos, StepReview}

func stepIndex(s Step) int {
	for i, candidate := range stepOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

type PropertyDetails struct {
	Title       string
	Description string
	GuestsLimit int
	Amenities   []string
}

type PricingDetails struct {
	NightlyRate money.Money
	WeekendRate money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Mode        listings.BookingMode
}

// Draft accumulates wizard answers between sessions. One draft per host;
// publishing clears it.
type Draft struct {
	HostID    string
	Step      Step
	Property  PropertyDetails
	Location  listings.Address
	Pricing   PricingDetails
	Photos    []string
	UpdatedAt time.Time
}

// DraftStore is the persistence port for wizard drafts. Implementations
// decide the medium; step logic never does.
type DraftStore interface {
	Load(ctx context.Context, hostID string) (*Draft, error)
	Save(ctx context.Context, draft *Draft) error
	Clear(ctx context.Context, hostID string) error
}

// Wizard drives the onboarding state machine over an injected DraftStore.
type Wizard struct {
	Drafts DraftStore
	Now    func() time.Time
}

// Resume loads the host's draft, creating a fresh one at the first step
// when none exists.
func (w *Wizard) Resume(ctx context.Context, hostID string) (*Draft, error) {
	if err := w.check(hostID); err != nil {
		return nil, err
	}
	draft, err := w.Drafts.Load(ctx, hostID)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, ErrDraftNotFound) {
		return nil, err
	}
	draft = &Draft{HostID: hostID, Step: StepProperty, UpdatedAt: w.now()}
	if err := w.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (w *Wizard) SubmitProperty(ctx context.Context, hostID string, details PropertyDetails) (*Draft, error) {
	if strings.TrimSpace(details.Title) == "" {
		return nil, listings.ErrTitleRequired
	}
	if details.GuestsLimit < 1 {
		return nil, listings.ErrGuestsLimit
	}
	return w.advance(ctx, hostID, StepProperty, func(d *Draft) {
		d.Property = details
	})
}

func (w *Wizard) SubmitLocation(ctx context.Context, hostID string, address listings.Address) (*Draft, error) {
	if !address.Valid() {
		return nil, listings.ErrAddressRequired
	}
	return w.advance(ctx, hostID, StepLocation, func(d *Draft) {
		d.Location = address
	})
}

func (w *Wizard) SubmitPricing(ctx context.Context, hostID string, details PricingDetails) (*Draft, error) {
	if details.NightlyRate.Amount <= 0 || details.NightlyRate.Currency == "" {
		return nil, listings.ErrNightlyRate
	}
	if details.CleaningFee.Amount < 0 || details.ServiceFee.Amount < 0 || details.WeekendRate.Amount < 0 {
		return nil, listings.ErrNegativeFee
	}
	if err := listings.EnsureSameCurrency(details.NightlyRate, details.WeekendRate, details.CleaningFee, details.ServiceFee); err != nil {
		return nil, err
	}
	if details.Mode != listings.ModeInstant && details.Mode != listings.ModeApproval {
		return nil, listings.ErrInvalidMode
	}
	return w.advance(ctx, hostID, StepPricing, func(d *Draft) {
		d.Pricing = details
	})
}

func (w *Wizard) SubmitPhotos(ctx context.Context, hostID string, photos []string) (*Draft, error) {
	return w.advance(ctx, hostID, StepPhotos, func(d *Draft) {
		d.Photos = append([]string(nil), photos...)
	})
}

// Back moves the draft one step earlier without discarding entered data.
func (w *Wizard) Back(ctx context.Context, hostID string) (*Draft, error) {
	draft, err := w.Resume(ctx, hostID)
	if err != nil {
		return nil, err
	}
	idx := stepIndex(draft.Step)
	if idx <= 0 {
		return nil, ErrAtFirstStep
	}
	draft.Step = stepOrder[idx-1]
	draft.UpdatedAt = w.now()
	if err := w.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Complete turns a finished draft into listing creation parameters. The
// draft survives until Discard so a failed publish can be retried.
func (w *Wizard) Complete(ctx context.Context, hostID string, listingID listings.ListingID, now time.Time) (listings.CreateListingParams, error) {
	draft, err := w.Resume(ctx, hostID)
	if err != nil {
		return listings.CreateListingParams{}, err
	}
	if draft.Step != StepReview {
		return listings.CreateListingParams{}, ErrNotReady
	}
	imageURL := ""
	if len(draft.Photos) > 0 {
		imageURL = draft.Photos[0]
	}
	params := listings.CreateListingParams{
		ID:          listingID,
		Host:        listings.HostID(hostID),
		Title:       draft.Property.Title,
		Description: draft.Property.Description,
		Address:     draft.Location,
		NightlyRate: draft.Pricing.NightlyRate,
		WeekendRate: draft.Pricing.WeekendRate,
		CleaningFee: draft.Pricing.CleaningFee,
		ServiceFee:  draft.Pricing.ServiceFee,
		GuestsLimit: draft.Property.GuestsLimit,
		Mode:        draft.Pricing.Mode,
		ImageURL:    imageURL,
		Photos:      append([]string(nil), draft.Photos...),
		Amenities:   append([]string(nil), draft.Property.Amenities...),
		Now:         now,
	}
	return params, nil
}

// Discard drops the host's draft after the listing has been persisted.
func (w *Wizard) Discard(ctx context.Context, hostID string) error {
	if err := w.check(hostID); err != nil {
		return err
	}
	return w.Drafts.Clear(ctx, hostID)
}

func (w *Wizard) advance(ctx context.Context, hostID string, step Step, apply func(*Draft)) (*Draft, error) {
	draft, err := w.Resume(ctx, hostID)
	if err != nil {
		return nil, err
	}
	// Resubmitting an earlier step rewinds the draft to it; skipping ahead
	// is refused.
	if stepIndex(step) > stepIndex(draft.Step) {
		return nil, ErrWrongStep
	}
	apply(draft)
	draft.Step = stepOrder[stepIndex(step)+1]
	draft.UpdatedAt = w.now()
	if err := w.Drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (w *Wizard) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

func (w *Wizard) check(hostID string) error {
	if w.Drafts == nil {
		return ErrStoreRequired
	}
	if strings.TrimSpace(hostID) == "" {
		return ErrHostRequired
	}
	return nil
}
