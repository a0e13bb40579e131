package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/app/queries"
	domainuser "stayhub/internal/domain/user"
)

type HostBookingHTTP interface {
	List(c *gin.Context)
	Confirm(c *gin.Context)
	Decline(c *gin.Context)
}

type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostBookingHandler) List(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	query := bookingapp.ListHostBookingsQuery{
		HostID: host.ID,
		Status: c.Query("status"),
	}
	result, err := queries.Ask[bookingapp.ListHostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostBookingHandler) Confirm(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	cmd := bookingapp.ConfirmHostBookingCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
	}
	result, err := commands.Dispatch[bookingapp.ConfirmHostBookingCommand, *bookingapp.HostBookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type declineBookingRequest struct {
	Reason string `json:"reason"`
}

func (h HostBookingHandler) Decline(c *gin.Context) {
	host, ok := requireRole(c, string(domainuser.RoleHost))
	if !ok {
		return
	}
	var req declineBookingRequest
	// Reason is optional, so a missing body is fine.
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.DeclineHostBookingCommand{
		HostID:    host.ID,
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[bookingapp.DeclineHostBookingCommand, *bookingapp.HostBookingActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostBookingHTTP = HostBookingHandler{}
