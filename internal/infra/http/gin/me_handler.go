package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	meapp "stayhub/internal/app/handlers/me"
	"stayhub/internal/app/queries"
)

type MeHTTP interface {
	Bookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) Bookings(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := meapp.ListMyBookingsQuery{
		GuestID: p.ID,
		Status:  c.Query("status"),
	}
	result, err := queries.Ask[meapp.ListMyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
