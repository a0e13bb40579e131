package onboarding

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
	domainonboarding "stayhub/internal/domain/onboarding"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

const (
	resumeKey         = "onboarding.resume"
	submitPropertyKey = "onboarding.property"
	submitLocationKey = "onboarding.location"
	submitPricingKey  = "onboarding.pricing"
	submitPhotosKey   = "onboarding.photos"
	backKey           = "onboarding.back"
	completeKey       = "onboarding.complete"
)

// DraftDTO is the wire shape of a wizard draft.
type DraftDTO struct {
	Step        string          `json:"step"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	GuestsLimit int             `json:"guests_limit,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Address     *dto.AddressDTO `json:"address,omitempty"`
	NightlyRate *dto.MoneyDTO   `json:"nightly_rate,omitempty"`
	WeekendRate *dto.MoneyDTO   `json:"weekend_rate,omitempty"`
	CleaningFee *dto.MoneyDTO   `json:"cleaning_fee,omitempty"`
	ServiceFee  *dto.MoneyDTO   `json:"service_fee,omitempty"`
	Mode        string          `json:"booking_mode,omitempty"`
	Photos      []string        `json:"photos,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func mapDraft(d *domainonboarding.Draft) DraftDTO {
	out := DraftDTO{
		Step:        string(d.Step),
		Title:       d.Property.Title,
		Description: d.Property.Description,
		GuestsLimit: d.Property.GuestsLimit,
		Amenities:   append([]string(nil), d.Property.Amenities...),
		Mode:        string(d.Pricing.Mode),
		Photos:      append([]string(nil), d.Photos...),
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Location.Valid() {
		out.Address = &dto.AddressDTO{
			Line1:   d.Location.Line1,
			City:    d.Location.City,
			Region:  d.Location.Region,
			Country: d.Location.Country,
			Lat:     d.Location.Lat,
			Lon:     d.Location.Lon,
		}
	}
	out.NightlyRate = mapOptionalMoney(d.Pricing.NightlyRate)
	out.WeekendRate = mapOptionalMoney(d.Pricing.WeekendRate)
	out.CleaningFee = mapOptionalMoney(d.Pricing.CleaningFee)
	out.ServiceFee = mapOptionalMoney(d.Pricing.ServiceFee)
	return out
}

func mapOptionalMoney(value money.Money) *dto.MoneyDTO {
	if value.IsZero() {
		return nil
	}
	mapped := dto.MapMoney(value)
	return &mapped
}

type ResumeQuery struct {
	HostID string
}

func (q ResumeQuery) Key() string { return resumeKey }

type SubmitPropertyCommand struct {
	HostID      string
	Title       string
	Description string
	GuestsLimit int
	Amenities   []string
}

func (c SubmitPropertyCommand) Key() string { return submitPropertyKey }

type SubmitLocationCommand struct {
	HostID  string
	Address domainlistings.Address
}

func (c SubmitLocationCommand) Key() string { return submitLocationKey }

type SubmitPricingCommand struct {
	HostID      string
	NightlyRate money.Money
	WeekendRate money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Mode        string
}

func (c SubmitPricingCommand) Key() string { return submitPricingKey }

type SubmitPhotosCommand struct {
	HostID string
	Photos []string
}

func (c SubmitPhotosCommand) Key() string { return submitPhotosKey }

type BackCommand struct {
	HostID string
}

func (c BackCommand) Key() string { return backKey }

type CompleteCommand struct {
	HostID string
}

func (c CompleteCommand) Key() string { return completeKey }

type CompleteResult struct {
	ListingID string `json:"listing_id"`
	State     string `json:"state"`
}

// Handlers wraps the wizard state machine for the command and query
// buses. Step submissions only touch the draft store; Complete is the one
// operation that writes through the unit of work.
type Handlers struct {
	Wizard  *domainonboarding.Wizard
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *Handlers) Resume(ctx context.Context, q ResumeQuery) (DraftDTO, error) {
	draft, err := h.Wizard.Resume(ctx, q.HostID)
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

func (h *Handlers) SubmitProperty(ctx context.Context, cmd SubmitPropertyCommand) (DraftDTO, error) {
	draft, err := h.Wizard.SubmitProperty(ctx, cmd.HostID, domainonboarding.PropertyDetails{
		Title:       cmd.Title,
		Description: cmd.Description,
		GuestsLimit: cmd.GuestsLimit,
		Amenities:   cmd.Amenities,
	})
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

func (h *Handlers) SubmitLocation(ctx context.Context, cmd SubmitLocationCommand) (DraftDTO, error) {
	draft, err := h.Wizard.SubmitLocation(ctx, cmd.HostID, cmd.Address)
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

func (h *Handlers) SubmitPricing(ctx context.Context, cmd SubmitPricingCommand) (DraftDTO, error) {
	mode, err := domainlistings.ParseBookingMode(cmd.Mode)
	if err != nil {
		return DraftDTO{}, err
	}
	draft, err := h.Wizard.SubmitPricing(ctx, cmd.HostID, domainonboarding.PricingDetails{
		NightlyRate: cmd.NightlyRate,
		WeekendRate: cmd.WeekendRate,
		CleaningFee: cmd.CleaningFee,
		ServiceFee:  cmd.ServiceFee,
		Mode:        mode,
	})
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

func (h *Handlers) SubmitPhotos(ctx context.Context, cmd SubmitPhotosCommand) (DraftDTO, error) {
	draft, err := h.Wizard.SubmitPhotos(ctx, cmd.HostID, cmd.Photos)
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

func (h *Handlers) Back(ctx context.Context, cmd BackCommand) (DraftDTO, error) {
	draft, err := h.Wizard.Back(ctx, cmd.HostID)
	if err != nil {
		return DraftDTO{}, err
	}
	return mapDraft(draft), nil
}

// Complete publishes the drafted listing and promotes the user to host.
func (h *Handlers) Complete(ctx context.Context, cmd CompleteCommand) (*CompleteResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := time.Now().UTC()
	params, err := h.Wizard.Complete(ctx, cmd.HostID, domainlistings.ListingID(uuid.NewString()), now)
	if err != nil {
		return nil, err
	}

	listing, err := domainlistings.NewListing(params)
	if err != nil {
		return nil, err
	}
	if err := listing.Publish(now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	owner, err := unit.Users().ByID(ctx, domainuser.ID(cmd.HostID))
	if err != nil {
		return nil, err
	}
	if err := owner.EnsureRole(domainuser.RoleHost, now); err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, owner); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending); err != nil {
		return nil, err
	}
	// The draft is only dropped once the listing and role grant are in;
	// any earlier failure leaves it resumable.
	if err := h.Wizard.Discard(ctx, cmd.HostID); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("onboarding completed", "host_id", cmd.HostID, "listing_id", listing.ID)
	}
	return &CompleteResult{ListingID: string(listing.ID), State: string(listing.State)}, nil
}

// Register wires every wizard operation onto the buses. Each method
// becomes its own registered handler.
func Register(cmdBus *commands.InMemoryBus, queryBus *queries.InMemoryBus, h *Handlers) {
	queries.RegisterHandler(queryBus, resumeKey, queries.HandlerFunc[ResumeQuery, DraftDTO](h.Resume))
	commands.RegisterHandler(cmdBus, submitPropertyKey, commands.HandlerFunc[SubmitPropertyCommand, DraftDTO](h.SubmitProperty))
	commands.RegisterHandler(cmdBus, submitLocationKey, commands.HandlerFunc[SubmitLocationCommand, DraftDTO](h.SubmitLocation))
	commands.RegisterHandler(cmdBus, submitPricingKey, commands.HandlerFunc[SubmitPricingCommand, DraftDTO](h.SubmitPricing))
	commands.RegisterHandler(cmdBus, submitPhotosKey, commands.HandlerFunc[SubmitPhotosCommand, DraftDTO](h.SubmitPhotos))
	commands.RegisterHandler(cmdBus, backKey, commands.HandlerFunc[BackCommand, DraftDTO](h.Back))
	commands.RegisterHandler(cmdBus, completeKey, commands.HandlerFunc[CompleteCommand, *CompleteResult](h.Complete))
}
