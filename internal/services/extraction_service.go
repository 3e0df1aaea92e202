package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"offer-service/internal/ai/gemini"
	"offer-service/internal/database/minio"
	"offer-service/internal/event"
	"offer-service/internal/models"
	"offer-service/internal/normalize"
	"offer-service/internal/repository"
	"offer-service/internal/worker"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// maxPDFPages rejects documents that are clearly not single offers before
// they burn an AI call.
const maxPDFPages = 60

// UploadedFile is one PDF accepted from a multipart upload.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ExtractionService owns the upload-to-database pipeline: store the PDF,
// extract it with Gemini, normalize the result and persist it, reporting
// per-document progress into the job state.
type ExtractionService struct {
	storage    *minio.MinioClient
	selector   *gemini.GeminiClientSelector
	healthNorm *normalize.HealthNormalizer
	cascoNorm  *normalize.CascoNormalizer
	healthRepo *repository.HealthOfferRepository
	cascoRepo  *repository.CascoRepository
	jobRepo    *repository.JobRepository
	publisher  *event.ExtractionPublisher
	pool       *worker.WorkingPool
}

func NewExtractionService(
	storage *minio.MinioClient,
	selector *gemini.GeminiClientSelector,
	healthRepo *repository.HealthOfferRepository,
	cascoRepo *repository.CascoRepository,
	jobRepo *repository.JobRepository,
	publisher *event.ExtractionPublisher,
	pool *worker.WorkingPool,
) *ExtractionService {
	return &ExtractionService{
		storage:    storage,
		selector:   selector,
		healthNorm: normalize.NewHealthNormalizer(normalize.DefaultHealthConfig()),
		cascoNorm:  normalize.NewCascoNormalizer(normalize.CascoCatalog),
		healthRepo: healthRepo,
		cascoRepo:  cascoRepo,
		jobRepo:    jobRepo,
		publisher:  publisher,
		pool:       pool,
	}
}

// StartBatch accepts one upload batch: every PDF is validated, stored in
// MinIO and queued for extraction. Validation failures reject the whole batch
// up front so a job never starts half-broken.
func (s *ExtractionService) StartBatch(ctx context.Context, product models.ProductType, files []UploadedFile) (*models.UploadResponse, error) {
	if !models.IsValidProductType(product) {
		return nil, fmt.Errorf("invalid product type: %s", product)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files in upload")
	}

	for _, f := range files {
		if err := validatePDF(f.Data); err != nil {
			return nil, fmt.Errorf("rejected %s: %w", f.Filename, err)
		}
	}

	jobID := uuid.New()
	bucket := bucketFor(product)

	documents := make([]string, 0, len(files))
	objects := make(map[string]UploadedFile, len(files))
	for _, f := range files {
		objectName := fmt.Sprintf("%s/%s%s", jobID, uuid.NewString(), filepath.Ext(f.Filename))
		if err := s.storage.UploadFile(ctx, bucket, objectName, f.Data, "application/pdf"); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", f.Filename, err)
		}
		documents = append(documents, objectName)
		objects[objectName] = f
	}

	if _, err := s.jobRepo.CreateJob(ctx, jobID, product, documents); err != nil {
		return nil, err
	}

	for _, objectName := range documents {
		file := objects[objectName]
		job := worker.Job{
			JobID:      jobID,
			DocumentID: objectName,
			Product:    product,
			Run: func(runCtx context.Context) error {
				return s.processDocument(runCtx, jobID, product, objectName, file.Filename)
			},
		}
		s.pool.SubmitJob(job)
	}

	slog.Info("Upload batch accepted",
		"job_id", jobID,
		"product", product,
		"documents", len(documents))

	return &models.UploadResponse{
		JobID:     jobID,
		Product:   product,
		Documents: documents,
	}, nil
}

// JobStatus returns the current progress of one batch
func (s *ExtractionService) JobStatus(ctx context.Context, jobID uuid.UUID) (*models.JobState, error) {
	return s.jobRepo.GetJob(ctx, jobID)
}

// processDocument runs one document through extraction and persistence. It
// always settles the document in the job state, success or failure, and
// publishes the batch event when the last document settles.
func (s *ExtractionService) processDocument(ctx context.Context, jobID uuid.UUID, product models.ProductType, objectName, filename string) error {
	status := models.ExtractionParsed

	var runErr error
	switch product {
	case models.ProductCasco:
		runErr = s.extractCasco(ctx, jobID, objectName, filename)
	default:
		runErr = s.extractHealth(ctx, jobID, objectName, filename)
	}
	if runErr != nil {
		status = models.ExtractionError
	}

	state, settled, err := s.jobRepo.UpdateDocumentStatus(ctx, jobID, objectName, status)
	if err != nil {
		slog.Error("Failed to record document outcome", "job_id", jobID, "document", objectName, "error", err)
		return runErr
	}

	if settled {
		failed := 0
		for _, st := range state.Documents {
			if st == models.ExtractionError {
				failed++
			}
		}
		if err := s.publisher.PublishExtractionFinished(ctx, models.ExtractionFinishedEvent{
			JobID:       jobID,
			Product:     product,
			Documents:   len(state.Documents),
			Failed:      failed,
			CompletedAt: time.Now(),
		}); err != nil {
			slog.Error("Failed to publish extraction event", "job_id", jobID, "error", err)
		}
	}

	return runErr
}

func (s *ExtractionService) extractHealth(ctx context.Context, jobID uuid.UUID, objectName, filename string) error {
	pdfData, err := s.storage.GetFileBytes(ctx, minio.Storage.HealthUploads, objectName)
	if err != nil {
		s.storeHealthError(ctx, jobID, objectName, filename, err)
		return err
	}

	prompt := gemini.HealthExtractionPrompt(normalize.HealthFeatureCatalog)
	resultMap, err := gemini.SendAIWithPDFAndRetry(ctx, prompt, pdfData, s.selector)
	if err != nil {
		s.storeHealthError(ctx, jobID, objectName, filename, err)
		return err
	}

	raw, err := decodeHealthOffer(resultMap)
	if err != nil {
		s.storeHealthError(ctx, jobID, objectName, filename, err)
		return err
	}

	doc := s.healthNorm.NormalizeOffer(raw)
	rows := healthRowsFor(jobID, objectName, filename, doc)

	if err := s.healthRepo.CreateBatch(ctx, rows); err != nil {
		return err
	}

	slog.Info("Health offer extracted",
		"job_id", jobID,
		"document", objectName,
		"insurer", doc.Insurer,
		"programs", len(doc.Programs))

	return nil
}

func (s *ExtractionService) extractCasco(ctx context.Context, jobID uuid.UUID, objectName, filename string) error {
	pdfData, err := s.storage.GetFileBytes(ctx, minio.Storage.CascoUploads, objectName)
	if err != nil {
		return err
	}

	resultMap, err := gemini.SendAIWithPDFAndRetry(ctx, gemini.CascoExtractionPrompt(), pdfData, s.selector)
	if err != nil {
		return err
	}

	if _, ok := resultMap["pdf_filename"]; !ok {
		resultMap["pdf_filename"] = filename
	}

	coverage, err := s.cascoNorm.Normalize(resultMap)
	if err != nil {
		return err
	}

	payload, err := coveragePayload(coverage)
	if err != nil {
		return err
	}

	row := &models.CascoCoverageRow{
		JobID:       jobID,
		InsurerName: coverage.InsurerName,
		PDFFilename: coverage.PDFFilename,
		Status:      models.ExtractionParsed,
		Payload:     payload,
	}
	if err := s.cascoRepo.Create(ctx, row); err != nil {
		return err
	}

	slog.Info("CASCO coverage extracted",
		"job_id", jobID,
		"document", objectName,
		"insurer", coverage.InsurerName)

	return nil
}

// storeHealthError persists a single error row so the document stays visible
// in the comparison with its failure reason.
func (s *ExtractionService) storeHealthError(ctx context.Context, jobID uuid.UUID, objectName, filename string, cause error) {
	msg := cause.Error()
	row := &models.ProgramRow{
		JobID:        jobID,
		DocumentID:   objectName,
		PDFFilename:  filename,
		InsurerCode:  normalize.Missing,
		Insurer:      filename,
		Company:      normalize.Missing,
		InquiryID:    normalize.Missing,
		Status:       models.ExtractionError,
		ErrorMessage: &msg,
		Features:     models.JSONMap{},
		Warnings:     models.JSONMap{},
	}
	if err := s.healthRepo.Create(ctx, row); err != nil {
		slog.Error("Failed to store extraction error row", "job_id", jobID, "document", objectName, "error", err)
	}
}

// healthRowsFor flattens one normalized document into its database rows. A
// document without programs still yields one placeholder row so grouping can
// surface it as "no programs".
func healthRowsFor(jobID uuid.UUID, objectName, filename string, doc models.NormalizedOfferDocument) []*models.ProgramRow {
	base := models.ProgramRow{
		JobID:        jobID,
		DocumentID:   objectName,
		PDFFilename:  filename,
		InsurerCode:  doc.InsurerCode,
		Insurer:      doc.Insurer,
		Company:      doc.Company,
		InsuredCount: doc.InsuredCount,
		InquiryID:    doc.InquiryID,
		Status:       models.ExtractionParsed,
		Features:     models.JSONMap{},
		Warnings:     warningsPayload(doc.Warnings),
	}

	if len(doc.Programs) == 0 {
		row := base
		return []*models.ProgramRow{&row}
	}

	rows := make([]*models.ProgramRow, 0, len(doc.Programs))
	for _, p := range doc.Programs {
		row := base
		row.ProgramCode = p.ProgramCode
		row.BaseSumEUR = p.BaseSumEUR
		row.PremiumEUR = p.PremiumEUR
		row.Features = featuresPayload(p.Features)
		rows = append(rows, &row)
	}
	return rows
}

func featuresPayload(features map[string]string) models.JSONMap {
	out := make(models.JSONMap, len(features))
	for k, v := range features {
		out[k] = v
	}
	return out
}

func warningsPayload(warnings []string) models.JSONMap {
	if len(warnings) == 0 {
		return models.JSONMap{}
	}
	items := make([]interface{}, 0, len(warnings))
	for _, w := range warnings {
		items = append(items, w)
	}
	return models.JSONMap{"warnings": items}
}

// decodeHealthOffer re-marshals the loose AI result map into the raw offer
// shape. Going through JSON keeps one decoding path for both live extraction
// and replayed payloads.
func decodeHealthOffer(resultMap map[string]any) (models.RawHealthOffer, error) {
	var raw models.RawHealthOffer
	data, err := json.Marshal(resultMap)
	if err != nil {
		return raw, fmt.Errorf("failed to re-marshal extraction result: %w", err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return raw, fmt.Errorf("failed to decode extraction result: %w", err)
	}
	return raw, nil
}

func coveragePayload(coverage *models.CascoCoverage) (models.JSONMap, error) {
	data, err := json.Marshal(coverage)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coverage: %w", err)
	}
	var payload models.JSONMap
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode coverage payload: %w", err)
	}
	return payload, nil
}

// validatePDF runs a structural sanity check before a document enters the
// pipeline: it must parse as a PDF and stay within the page limit.
func validatePDF(data []byte) error {
	rs := bytes.NewReader(data)
	if err := api.Validate(rs, nil); err != nil {
		return fmt.Errorf("not a valid PDF: %w", err)
	}

	if _, err := rs.Seek(0, 0); err != nil {
		return err
	}
	pages, err := api.PageCount(rs, nil)
	if err != nil {
		return fmt.Errorf("failed to count PDF pages: %w", err)
	}
	if pages == 0 || pages > maxPDFPages {
		return fmt.Errorf("unexpected page count %d", pages)
	}

	return nil
}

func bucketFor(product models.ProductType) string {
	if product == models.ProductCasco {
		return minio.Storage.CascoUploads
	}
	return minio.Storage.HealthUploads
}
