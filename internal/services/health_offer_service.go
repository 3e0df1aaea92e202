package services

import (
	"context"
	"fmt"

	"offer-service/internal/compare"
	"offer-service/internal/models"
	"offer-service/internal/normalize"
	"offer-service/internal/repository"

	"github.com/google/uuid"
)

// HealthOfferService serves the stored health extraction results: grouped
// per-document offers and the comparison matrix over them.
type HealthOfferService struct {
	healthRepo *repository.HealthOfferRepository
}

func NewHealthOfferService(healthRepo *repository.HealthOfferRepository) *HealthOfferService {
	return &HealthOfferService{healthRepo: healthRepo}
}

// GetOfferGroups returns one group per uploaded document, in upload order.
func (s *HealthOfferService) GetOfferGroups(ctx context.Context, jobID uuid.UUID) ([]models.OfferGroup, error) {
	rows, err := s.healthRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load health offers: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("not_found: no health offers for job %s", jobID)
	}

	return compare.GroupProgramRows(rows), nil
}

// GetComparisonMatrix builds the insurer-by-feature grid for one batch. Only
// parsed documents become columns; errored ones surface through the groups
// endpoint instead.
func (s *HealthOfferService) GetComparisonMatrix(ctx context.Context, jobID uuid.UUID) (*models.ComparisonMatrix, error) {
	groups, err := s.GetOfferGroups(ctx, jobID)
	if err != nil {
		return nil, err
	}

	records := make([]compare.ColumnRecord, 0, len(groups))
	for _, g := range groups {
		if g.Status != models.ExtractionParsed {
			continue
		}
		records = append(records, compare.HealthColumn{Group: g})
	}

	matrix := compare.BuildMatrix(normalize.HealthComparisonRows(), records)
	return &matrix, nil
}
