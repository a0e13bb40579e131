package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "stayhub/internal/app/handlers/booking"
	listingsapp "stayhub/internal/app/handlers/listings"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainonboarding "stayhub/internal/domain/onboarding"
	domainpricing "stayhub/internal/domain/pricing"
	domainuser "stayhub/internal/domain/user"
	infradb "stayhub/internal/infra/db/mongo"
)

// respondDomainError maps domain errors onto HTTP status codes.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainbooking.ErrDateConflict),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed),
		errors.Is(err, infradb.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainonboarding.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrBookingNotOwned),
		errors.Is(err, listingsapp.ErrListingNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainpricing.ErrInvalidDateRange),
		errors.Is(err, domainpricing.ErrMissingParameters),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestsLimit),
		errors.Is(err, domainbooking.ErrPaymentRequired),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrGuestsLimit),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrNegativeFee),
		errors.Is(err, domainlistings.ErrInvalidMode),
		errors.Is(err, domainlistings.ErrInvalidState),
		errors.Is(err, domainlistings.ErrAddressRequired),
		errors.Is(err, domainonboarding.ErrWrongStep),
		errors.Is(err, domainonboarding.ErrNotReady),
		errors.Is(err, domainonboarding.ErrAtFirstStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
