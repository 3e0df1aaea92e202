package handlers

import (
	"log/slog"
	"net/http"

	"offer-service/internal/models"
	"offer-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CascoHandler struct {
	cascoService *services.CascoService
}

func NewCascoHandler(cascoService *services.CascoService) *CascoHandler {
	return &CascoHandler{cascoService: cascoService}
}

func (ch *CascoHandler) Register(app *fiber.App) {
	group := app.Group("offers/api/v1/casco")

	group.Get("/:job_id", ch.GetCoverages)
	group.Get("/:job_id/comparison", ch.GetComparisonMatrix)
	group.Patch("/coverage/:id", ch.UpdateCoverage)
}

func (ch *CascoHandler) GetCoverages(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	rows, err := ch.cascoService.GetCoverages(c.Context(), jobID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(models.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(rows))
}

func (ch *CascoHandler) GetComparisonMatrix(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	matrix, err := ch.cascoService.GetComparisonMatrix(c.Context(), jobID)
	if err != nil {
		return c.Status(statusFor(err)).JSON(models.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(matrix))
}

func (ch *CascoHandler) UpdateCoverage(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	var req models.CoverageUpdateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	row, err := ch.cascoService.UpdateCoverage(c.Context(), id, req)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("UPDATE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(row))
}
