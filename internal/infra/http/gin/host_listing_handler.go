package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type HostListingHTTP interface {
	List(c *gin.Context)
	Update(c *gin.Context)
}

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostListingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	query := listingsapp.ListHostListingsQuery{
		HostID: host.ID,
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	result, err := queries.Ask[listingsapp.ListHostListingsQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type addressRequest struct {
	Line1   string  `json:"line1"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type moneyRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m moneyRequest) toInput() listingsapp.MoneyInput {
	return listingsapp.MoneyInput{Amount: m.Amount, Currency: m.Currency}
}

type updateListingRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Address     addressRequest `json:"address"`
	NightlyRate moneyRequest   `json:"nightly_rate"`
	WeekendRate moneyRequest   `json:"weekend_rate"`
	CleaningFee moneyRequest   `json:"cleaning_fee"`
	ServiceFee  moneyRequest   `json:"service_fee"`
	GuestsLimit int            `json:"guests_limit"`
	Mode        string         `json:"booking_mode"`
	ImageURL    string         `json:"image_url"`
	Photos      []string       `json:"photos"`
	Amenities   []string       `json:"amenities"`
}

func (h HostListingHandler) Update(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingsapp.UpdateListingCommand{
		HostID:      host.ID,
		ListingID:   c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Address: domainlistings.Address{
			Line1:   req.Address.Line1,
			City:    req.Address.City,
			Region:  req.Address.Region,
			Country: req.Address.Country,
			Lat:     req.Address.Lat,
			Lon:     req.Address.Lon,
		},
		NightlyRate: req.NightlyRate.toInput(),
		WeekendRate: req.WeekendRate.toInput(),
		CleaningFee: req.CleaningFee.toInput(),
		ServiceFee:  req.ServiceFee.toInput(),
		GuestsLimit: req.GuestsLimit,
		Mode:        req.Mode,
		ImageURL:    req.ImageURL,
		Photos:      req.Photos,
		Amenities:   req.Amenities,
	}
	result, err := commands.Dispatch[listingsapp.UpdateListingCommand, dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostListingHTTP = HostListingHandler{}
