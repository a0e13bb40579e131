package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
)

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
}

type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Catalog(c *gin.Context) {
	query := listingsapp.SearchCatalogQuery{
		City:          c.Query("city"),
		Country:       c.Query("country"),
		LocationQuery: c.Query("q"),
		Amenities:     splitCSV(c.Query("amenities")),
		MinGuests:     intQuery(c, "guests"),
		PriceMin:      int64Query(c, "price_min"),
		PriceMax:      int64Query(c, "price_max"),
		Mode:          c.Query("mode"),
		Sort:          c.Query("sort"),
		Limit:         intQuery(c, "limit"),
		Offset:        intQuery(c, "offset"),
	}
	result, err := queries.Ask[listingsapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingsapp.GetListingQuery{ListingID: c.Param("id")}
	if p, ok := currentPrincipal(c); ok {
		query.ViewerID = p.ID
	}
	result, err := queries.Ask[listingsapp.GetListingQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func int64Query(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

var _ ListingHTTP = ListingHandler{}
