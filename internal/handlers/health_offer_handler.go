package handlers

import (
	"net/http"
	"strings"

	"offer-service/internal/models"
	"offer-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type HealthOfferHandler struct {
	healthOfferService *services.HealthOfferService
}

func NewHealthOfferHandler(healthOfferService *services.HealthOfferService) *HealthOfferHandler {
	return &HealthOfferHandler{healthOfferService: healthOfferService}
}

func (hoh *HealthOfferHandler) Register(app *fiber.App) {
	group := app.Group("offers/api/v1/health")

	group.Get("/:job_id", hoh.GetOfferGroups)
	group.Get("/:job_id/comparison", hoh.GetComparisonMatrix)
}

func (hoh *HealthOfferHandler) GetOfferGroups(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	groups, err := hoh.healthOfferService.GetOfferGroups(c.Context(), jobID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(models.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(groups))
}

func (hoh *HealthOfferHandler) GetComparisonMatrix(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	matrix, err := hoh.healthOfferService.GetComparisonMatrix(c.Context(), jobID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(models.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(matrix))
}

// statusFor maps the tagged not_found errors onto 404; anything else is a
// server fault. The tag survives wrapping, so match anywhere in the chain.
func statusFor(err error) int {
	if strings.Contains(err.Error(), "not_found") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
