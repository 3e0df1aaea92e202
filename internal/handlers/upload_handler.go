package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"offer-service/internal/models"
	"offer-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// maxUploadFiles caps one batch; a comparison across more insurers than this
// is not a realistic request.
const maxUploadFiles = 15

type UploadHandler struct {
	extractionService *services.ExtractionService
}

func NewUploadHandler(extractionService *services.ExtractionService) *UploadHandler {
	return &UploadHandler{extractionService: extractionService}
}

func (uh *UploadHandler) Register(app *fiber.App) {
	group := app.Group("offers/api/v1")

	group.Post("/health/upload", uh.UploadHealth)
	group.Post("/casco/upload", uh.UploadCasco)
	group.Get("/jobs/:job_id", uh.GetJobStatus)
}

func (uh *UploadHandler) UploadHealth(c fiber.Ctx) error {
	return uh.upload(c, models.ProductHealth)
}

func (uh *UploadHandler) UploadCasco(c fiber.Ctx) error {
	return uh.upload(c, models.ProductCasco)
}

func (uh *UploadHandler) upload(c fiber.Ctx, product models.ProductType) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error("error parsing multipart form", "error", err)
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_REQUEST", "Expected multipart form with PDF files"))
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("NO_FILES", "No files in upload"))
	}
	if len(fileHeaders) > maxUploadFiles {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("TOO_MANY_FILES", "Too many files in one batch"))
	}

	files := make([]services.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_FILE", "Only PDF files are accepted: "+fh.Filename))
		}

		f, err := fh.Open()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_FILE", "Failed to open "+fh.Filename))
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_FILE", "Failed to read "+fh.Filename))
		}

		files = append(files, services.UploadedFile{Filename: fh.Filename, Data: data})
	}

	resp, err := uh.extractionService.StartBatch(c.Context(), product, files)
	if err != nil {
		slog.Error("upload rejected", "product", product, "error", err)
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("UPLOAD_REJECTED", err.Error()))
	}

	return c.Status(http.StatusAccepted).JSON(models.CreateSuccessResponse(resp))
}

func (uh *UploadHandler) GetJobStatus(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	state, err := uh.extractionService.JobStatus(c.Context(), jobID)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(models.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(models.CreateSuccessResponse(state))
}
