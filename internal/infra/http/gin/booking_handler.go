package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/queries"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Quote(c *gin.Context)
	Availability(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID string    `json:"listing_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Guests    int       `json:"guests"`
	Payment   string    `json:"payment"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		GuestID:         user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          req.Guests,
		Payment:         req.Payment,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type quoteQueryParams struct {
	CheckIn  time.Time `form:"check_in" time_format:"2006-01-02"`
	CheckOut time.Time `form:"check_out" time_format:"2006-01-02"`
	Guests   int       `form:"guests"`
}

func (h BookingHandler) Quote(c *gin.Context) {
	var params quoteQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := bookingapp.QuoteStayQuery{
		ListingID: c.Param("id"),
		CheckIn:   params.CheckIn,
		CheckOut:  params.CheckOut,
		Guests:    params.Guests,
	}
	result, err := queries.Ask[bookingapp.QuoteStayQuery, dto.QuoteDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Availability(c *gin.Context) {
	var params quoteQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := bookingapp.CheckAvailabilityQuery{
		ListingID: c.Param("id"),
		CheckIn:   params.CheckIn,
		CheckOut:  params.CheckOut,
	}
	result, err := queries.Ask[bookingapp.CheckAvailabilityQuery, bookingapp.AvailabilityResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
