package services

import (
	"context"
	"encoding/json"
	"fmt"

	"offer-service/internal/compare"
	"offer-service/internal/models"
	"offer-service/internal/normalize"
	"offer-service/internal/repository"

	"github.com/google/uuid"
)

// CascoService serves stored CASCO coverages and applies user corrections to
// them. Edits go through the typed record so a correction can never push a
// wrongly typed value into a stored payload.
type CascoService struct {
	cascoRepo     *repository.CascoRepository
	editableCodes map[string]bool
}

func NewCascoService(cascoRepo *repository.CascoRepository) *CascoService {
	editable := make(map[string]bool)
	for _, code := range models.CascoAttributeCodes() {
		editable[code] = true
	}
	return &CascoService{
		cascoRepo:     cascoRepo,
		editableCodes: editable,
	}
}

// GetCoverages returns every stored coverage of one batch in upload order.
func (s *CascoService) GetCoverages(ctx context.Context, jobID uuid.UUID) ([]models.CascoCoverageRow, error) {
	rows, err := s.cascoRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load casco coverages: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("not_found: no casco coverages for job %s", jobID)
	}
	return rows, nil
}

// GetComparisonMatrix builds the insurer-by-attribute grid for one batch.
func (s *CascoService) GetComparisonMatrix(ctx context.Context, jobID uuid.UUID) (*models.ComparisonMatrix, error) {
	rows, err := s.GetCoverages(ctx, jobID)
	if err != nil {
		return nil, err
	}

	records := make([]compare.ColumnRecord, 0, len(rows))
	for _, row := range rows {
		coverage, err := decodeCoverage(row.Payload)
		if err != nil {
			return nil, fmt.Errorf("stored coverage %s is corrupt: %w", row.ID, err)
		}
		records = append(records, coverage)
	}

	matrix := compare.BuildMatrix(normalize.CascoComparisonRows(), records)
	return &matrix, nil
}

// UpdateCoverage merges a user edit into one stored coverage. Only known
// attribute codes are accepted; the merged payload must still decode into the
// typed record or the edit is rejected as a whole.
func (s *CascoService) UpdateCoverage(ctx context.Context, id uuid.UUID, req models.CoverageUpdateRequest) (*models.CascoCoverageRow, error) {
	if len(req.Fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	for code := range req.Fields {
		if !s.editableCodes[code] {
			return nil, fmt.Errorf("unknown coverage attribute: %s", code)
		}
	}

	row, err := s.cascoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := make(models.JSONMap, len(row.Payload)+len(req.Fields))
	for k, v := range row.Payload {
		merged[k] = v
	}
	for k, v := range req.Fields {
		if v == nil {
			// Explicit null clears the attribute back to absent.
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	coverage, err := decodeCoverage(merged)
	if err != nil {
		return nil, fmt.Errorf("edit produces an invalid coverage: %w", err)
	}

	payload, err := coveragePayload(coverage)
	if err != nil {
		return nil, err
	}

	if err := s.cascoRepo.UpdatePayload(ctx, id, payload); err != nil {
		return nil, err
	}

	row.Payload = payload
	return row, nil
}

// decodeCoverage rebuilds the typed record from a stored or merged payload.
// Decoding is strict: a value of the wrong kind fails instead of being
// silently coerced.
func decodeCoverage(payload models.JSONMap) (*models.CascoCoverage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	var coverage models.CascoCoverage
	if err := json.Unmarshal(data, &coverage); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if coverage.InsurerName == "" {
		return nil, normalize.ErrMissingMetadata
	}
	return &coverage, nil
}
