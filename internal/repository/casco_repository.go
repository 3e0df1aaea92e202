package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"offer-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CascoRepository struct {
	db *sqlx.DB
}

func NewCascoRepository(db *sqlx.DB) *CascoRepository {
	return &CascoRepository{db: db}
}

// Create inserts one coverage row. The payload column holds the marshaled
// coverage record as JSONB.
func (r *CascoRepository) Create(ctx context.Context, row *models.CascoCoverageRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now

	query := `
		INSERT INTO casco_coverage (
			id, job_id, insurer_name, pdf_filename, status, payload, created_at, updated_at
		) VALUES (
			:id, :job_id, :insurer_name, :pdf_filename, :status, :payload, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create casco coverage: %w", err)
	}

	return nil
}

// GetByJobID returns every coverage of one upload batch in insertion order
func (r *CascoRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) ([]models.CascoCoverageRow, error) {
	var rows []models.CascoCoverageRow
	query := `
		SELECT * FROM casco_coverage
		WHERE job_id = $1
		ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &rows, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get casco coverages for job %s: %w", jobID, err)
	}

	return rows, nil
}

// GetByID returns a single coverage row
func (r *CascoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CascoCoverageRow, error) {
	var row models.CascoCoverageRow
	query := `SELECT * FROM casco_coverage WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not_found: casco coverage not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get casco coverage: %w", err)
	}

	return &row, nil
}

// UpdatePayload replaces the stored payload after a user edit was merged in.
// The merge itself happens in the service layer against the typed record.
func (r *CascoRepository) UpdatePayload(ctx context.Context, id uuid.UUID, payload models.JSONMap) error {
	query := `
		UPDATE casco_coverage SET
			payload = :payload,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         id,
		"payload":    payload,
		"updated_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update casco coverage: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("not_found: casco coverage not found: %s", id)
	}

	return nil
}

// DeleteByJobID removes all coverages of one batch
func (r *CascoRepository) DeleteByJobID(ctx context.Context, jobID uuid.UUID) error {
	query := `DELETE FROM casco_coverage WHERE job_id = $1`

	_, err := r.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete casco coverages for job %s: %w", jobID, err)
	}

	return nil
}
