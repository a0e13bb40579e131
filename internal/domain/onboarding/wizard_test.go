package onboarding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
)

type mapDraftStore struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

func newMapDraftStore() *mapDraftStore {
	return &mapDraftStore{drafts: map[string]*Draft{}}
}

func (s *mapDraftStore) Load(_ context.Context, hostID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[hostID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	clone := *draft
	return &clone, nil
}

func (s *mapDraftStore) Save(_ context.Context, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *draft
	s.drafts[draft.HostID] = &clone
	return nil
}

func (s *mapDraftStore) Clear(_ context.Context, hostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, hostID)
	return nil
}

func newTestWizard() *Wizard {
	return &Wizard{Drafts: newMapDraftStore()}
}

func validProperty() PropertyDetails {
	return PropertyDetails{Title: "Cosy cabin", Description: "In the woods", GuestsLimit: 2, Amenities: []string{"wifi"}}
}

func validAddress() listings.Address {
	return listings.Address{Line1: "Main street 1", City: "Tromso", Country: "Norway"}
}

func validPricing() PricingDetails {
	return PricingDetails{
		NightlyRate: money.Must(9000, "EUR"),
		CleaningFee: money.Must(2000, "EUR"),
		Mode:        listings.ModeApproval,
	}
}

func TestResumeCreatesFreshDraft(t *testing.T) {
	w := newTestWizard()
	draft, err := w.Resume(context.Background(), "host-1")
	require.NoError(t, err)
	assert.Equal(t, StepProperty, draft.Step)

	_, err = w.Resume(context.Background(), " ")
	assert.ErrorIs(t, err, ErrHostRequired)
}

func TestStepsAdvanceInOrder(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	draft, err := w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)
	assert.Equal(t, StepLocation, draft.Step)

	draft, err = w.SubmitLocation(ctx, "host-1", validAddress())
	require.NoError(t, err)
	assert.Equal(t, StepPricing, draft.Step)

	draft, err = w.SubmitPricing(ctx, "host-1", validPricing())
	require.NoError(t, err)
	assert.Equal(t, StepPhotos, draft.Step)

	draft, err = w.SubmitPhotos(ctx, "host-1", []string{"https://img/1.jpg"})
	require.NoError(t, err)
	assert.Equal(t, StepReview, draft.Step)
}

func TestSkippingAheadIsRefused(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.SubmitLocation(ctx, "host-1", validAddress())
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = w.SubmitPricing(ctx, "host-1", validPricing())
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestResubmittingEarlierStepRewinds(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)
	_, err = w.SubmitLocation(ctx, "host-1", validAddress())
	require.NoError(t, err)

	details := validProperty()
	details.Title = "Renamed cabin"
	draft, err := w.SubmitProperty(ctx, "host-1", details)
	require.NoError(t, err)
	assert.Equal(t, StepLocation, draft.Step)
	assert.Equal(t, "Renamed cabin", draft.Property.Title)
	assert.Equal(t, "Tromso", draft.Location.City, "rewinding keeps later answers")
}

func TestBack(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.Resume(ctx, "host-1")
	require.NoError(t, err)
	_, err = w.Back(ctx, "host-1")
	assert.ErrorIs(t, err, ErrAtFirstStep)

	_, err = w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)
	draft, err := w.Back(ctx, "host-1")
	require.NoError(t, err)
	assert.Equal(t, StepProperty, draft.Step)
	assert.Equal(t, "Cosy cabin", draft.Property.Title)
}

func TestStepValidation(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.SubmitProperty(ctx, "host-1", PropertyDetails{GuestsLimit: 2})
	assert.ErrorIs(t, err, listings.ErrTitleRequired)

	_, err = w.SubmitProperty(ctx, "host-1", PropertyDetails{Title: "X", GuestsLimit: 0})
	assert.ErrorIs(t, err, listings.ErrGuestsLimit)

	_, err = w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)

	_, err = w.SubmitLocation(ctx, "host-1", listings.Address{City: "Nowhere"})
	assert.ErrorIs(t, err, listings.ErrAddressRequired)

	_, err = w.SubmitLocation(ctx, "host-1", validAddress())
	require.NoError(t, err)

	bad := validPricing()
	bad.NightlyRate = money.Money{}
	_, err = w.SubmitPricing(ctx, "host-1", bad)
	assert.ErrorIs(t, err, listings.ErrNightlyRate)

	bad = validPricing()
	bad.Mode = "later"
	_, err = w.SubmitPricing(ctx, "host-1", bad)
	assert.ErrorIs(t, err, listings.ErrInvalidMode)

	bad = validPricing()
	bad.WeekendRate = money.Must(12000, "USD")
	_, err = w.SubmitPricing(ctx, "host-1", bad)
	assert.ErrorIs(t, err, listings.ErrCurrencyMismatch)
}

func TestCompleteRequiresReviewStep(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)

	_, err = w.Complete(ctx, "host-1", "lst-1", time.Now())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCompleteKeepsDraftUntilDiscard(t *testing.T) {
	w := newTestWizard()
	ctx := context.Background()

	_, err := w.SubmitProperty(ctx, "host-1", validProperty())
	require.NoError(t, err)
	_, err = w.SubmitLocation(ctx, "host-1", validAddress())
	require.NoError(t, err)
	_, err = w.SubmitPricing(ctx, "host-1", validPricing())
	require.NoError(t, err)
	_, err = w.SubmitPhotos(ctx, "host-1", []string{"https://img/1.jpg", "https://img/2.jpg"})
	require.NoError(t, err)

	params, err := w.Complete(ctx, "host-1", "lst-1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, listings.ListingID("lst-1"), params.ID)
	assert.Equal(t, listings.HostID("host-1"), params.Host)
	assert.Equal(t, "Cosy cabin", params.Title)
	assert.Equal(t, "https://img/1.jpg", params.ImageURL, "first photo becomes the cover")
	assert.Len(t, params.Photos, 2)

	listing, err := listings.NewListing(params)
	require.NoError(t, err)
	require.NoError(t, listing.Publish(time.Now()))

	// Completing alone keeps the draft, so a failed publish can retry.
	draft, err := w.Resume(ctx, "host-1")
	require.NoError(t, err)
	assert.Equal(t, StepReview, draft.Step)

	again, err := w.Complete(ctx, "host-1", "lst-2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Cosy cabin", again.Title)

	// Discard drops it; the next resume starts over.
	require.NoError(t, w.Discard(ctx, "host-1"))
	draft, err = w.Resume(ctx, "host-1")
	require.NoError(t, err)
	assert.Equal(t, StepProperty, draft.Step)
}
