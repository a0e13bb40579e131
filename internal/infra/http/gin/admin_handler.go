package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	adminapp "stayhub/internal/app/handlers/admin"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
	domainuser "stayhub/internal/domain/user"
)

type AdminHTTP interface {
	Overview(c *gin.Context)
	Users(c *gin.Context)
	BlockUser(c *gin.Context)
	SuspendListing(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) Overview(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	result, err := queries.Ask[adminapp.OverviewQuery, dto.AdminOverview](c.Request.Context(), h.Queries, adminapp.OverviewQuery{})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) Users(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	query := adminapp.ListUsersQuery{
		Query:  c.Query("q"),
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	result, err := queries.Ask[adminapp.ListUsersQuery, dto.UserList](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) BlockUser(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	cmd := adminapp.BlockUserCommand{UserID: c.Param("id")}
	result, err := commands.Dispatch[adminapp.BlockUserCommand, dto.UserProfile](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type suspendListingRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) SuspendListing(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleAdmin)); !ok {
		return
	}
	var req suspendListingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := listingsapp.SuspendListingCommand{
		ListingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[listingsapp.SuspendListingCommand, dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
