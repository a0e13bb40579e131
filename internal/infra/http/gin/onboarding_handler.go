package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	onboardingapp "stayhub/internal/app/handlers/onboarding"
	"stayhub/internal/app/queries"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/storage/s3"
)

const maxPhotoUploadBytes = 10 << 20

type OnboardingHTTP interface {
	Resume(c *gin.Context)
	SubmitProperty(c *gin.Context)
	SubmitLocation(c *gin.Context)
	SubmitPricing(c *gin.Context)
	SubmitPhotos(c *gin.Context)
	UploadPhoto(c *gin.Context)
	Back(c *gin.Context)
	Complete(c *gin.Context)
}

// OnboardingHandler drives the listing creation wizard. Any authenticated
// user may start a draft; the host role is granted on completion.
type OnboardingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Uploader s3.Uploader
	Logger   *slog.Logger
}

func (h OnboardingHandler) Resume(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	result, err := queries.Ask[onboardingapp.ResumeQuery, onboardingapp.DraftDTO](c.Request.Context(), h.Queries, onboardingapp.ResumeQuery{HostID: p.ID})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type propertyStepRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	GuestsLimit int      `json:"guests_limit"`
	Amenities   []string `json:"amenities"`
}

func (h OnboardingHandler) SubmitProperty(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req propertyStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := onboardingapp.SubmitPropertyCommand{
		HostID:      p.ID,
		Title:       req.Title,
		Description: req.Description,
		GuestsLimit: req.GuestsLimit,
		Amenities:   req.Amenities,
	}
	h.dispatchStep(c, cmd)
}

func (h OnboardingHandler) SubmitLocation(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := onboardingapp.SubmitLocationCommand{
		HostID: p.ID,
		Address: domainlistings.Address{
			Line1:   req.Line1,
			City:    req.City,
			Region:  req.Region,
			Country: req.Country,
			Lat:     req.Lat,
			Lon:     req.Lon,
		},
	}
	h.dispatchStep(c, cmd)
}

type pricingStepRequest struct {
	NightlyRate moneyRequest `json:"nightly_rate"`
	WeekendRate moneyRequest `json:"weekend_rate"`
	CleaningFee moneyRequest `json:"cleaning_fee"`
	ServiceFee  moneyRequest `json:"service_fee"`
	Mode        string       `json:"booking_mode"`
}

func (h OnboardingHandler) SubmitPricing(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req pricingStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := onboardingapp.SubmitPricingCommand{
		HostID:      p.ID,
		NightlyRate: money.Money{Amount: req.NightlyRate.Amount, Currency: req.NightlyRate.Currency},
		WeekendRate: money.Money{Amount: req.WeekendRate.Amount, Currency: req.WeekendRate.Currency},
		CleaningFee: money.Money{Amount: req.CleaningFee.Amount, Currency: req.CleaningFee.Currency},
		ServiceFee:  money.Money{Amount: req.ServiceFee.Amount, Currency: req.ServiceFee.Currency},
		Mode:        req.Mode,
	}
	h.dispatchStep(c, cmd)
}

type photosStepRequest struct {
	Photos []string `json:"photos"`
}

func (h OnboardingHandler) SubmitPhotos(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req photosStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := onboardingapp.SubmitPhotosCommand{HostID: p.ID, Photos: req.Photos}
	h.dispatchStep(c, cmd)
}

// UploadPhoto stores a single image and returns the public URL. The client
// collects the URLs and submits them as the photos step.
func (h OnboardingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage unavailable"})
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if file.Size > maxPhotoUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds the size limit"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("listings/%s/%d-%s%s", p.ID, time.Now().UnixNano(), uuid.NewString()[:8], filepath.Ext(file.Filename))
	url, err := h.Uploader.Upload(c.Request.Context(), key, src, file.Header.Get("Content-Type"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("photo upload failed", "error", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "photo upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func (h OnboardingHandler) Back(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	h.dispatchStep(c, onboardingapp.BackCommand{HostID: p.ID})
}

func (h OnboardingHandler) Complete(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := onboardingapp.CompleteCommand{HostID: p.ID}
	result, err := commands.Dispatch[onboardingapp.CompleteCommand, *onboardingapp.CompleteResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h OnboardingHandler) dispatchStep(c *gin.Context, cmd commands.Command) {
	var (
		result onboardingapp.DraftDTO
		err    error
	)
	switch typed := cmd.(type) {
	case onboardingapp.SubmitPropertyCommand:
		result, err = commands.Dispatch[onboardingapp.SubmitPropertyCommand, onboardingapp.DraftDTO](c.Request.Context(), h.Commands, typed)
	case onboardingapp.SubmitLocationCommand:
		result, err = commands.Dispatch[onboardingapp.SubmitLocationCommand, onboardingapp.DraftDTO](c.Request.Context(), h.Commands, typed)
	case onboardingapp.SubmitPricingCommand:
		result, err = commands.Dispatch[onboardingapp.SubmitPricingCommand, onboardingapp.DraftDTO](c.Request.Context(), h.Commands, typed)
	case onboardingapp.SubmitPhotosCommand:
		result, err = commands.Dispatch[onboardingapp.SubmitPhotosCommand, onboardingapp.DraftDTO](c.Request.Context(), h.Commands, typed)
	case onboardingapp.BackCommand:
		result, err = commands.Dispatch[onboardingapp.BackCommand, onboardingapp.DraftDTO](c.Request.Context(), h.Commands, typed)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsupported wizard step"})
		return
	}
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ OnboardingHTTP = OnboardingHandler{}
