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

type HealthOfferRepository struct {
	db *sqlx.DB
}

func NewHealthOfferRepository(db *sqlx.DB) *HealthOfferRepository {
	return &HealthOfferRepository{db: db}
}

// Create inserts one program row. One uploaded PDF produces one row per
// retained program, or a single error row when extraction failed.
func (r *HealthOfferRepository) Create(ctx context.Context, row *models.ProgramRow) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now()

	query := `
		INSERT INTO health_program (
			id, job_id, document_id, pdf_filename,
			insurer_code, insurer, company, insured_count, inquiry_id,
			status, error_message,
			program_code, base_sum_eur, premium_eur, features, warnings,
			created_at
		) VALUES (
			:id, :job_id, :document_id, :pdf_filename,
			:insurer_code, :insurer, :company, :insured_count, :inquiry_id,
			:status, :error_message,
			:program_code, :base_sum_eur, :premium_eur, :features, :warnings,
			:created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create health program row: %w", err)
	}

	return nil
}

// CreateBatch inserts every row of one document inside a single transaction,
// so a document is either fully stored or not stored at all.
func (r *HealthOfferRepository) CreateBatch(ctx context.Context, rows []*models.ProgramRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO health_program (
			id, job_id, document_id, pdf_filename,
			insurer_code, insurer, company, insured_count, inquiry_id,
			status, error_message,
			program_code, base_sum_eur, premium_eur, features, warnings,
			created_at
		) VALUES (
			:id, :job_id, :document_id, :pdf_filename,
			:insurer_code, :insurer, :company, :insured_count, :inquiry_id,
			:status, :error_message,
			:program_code, :base_sum_eur, :premium_eur, :features, :warnings,
			:created_at
		)`

	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = time.Now()

		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to create health program row in transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit health program rows: %w", err)
	}

	return nil
}

// GetByJobID returns every program row of one upload batch in insertion order.
// Insertion order matters downstream: grouping keeps the first-seen document
// order for the comparison columns.
func (r *HealthOfferRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) ([]models.ProgramRow, error) {
	var rows []models.ProgramRow
	query := `
		SELECT * FROM health_program
		WHERE job_id = $1
		ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &rows, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get health programs for job %s: %w", jobID, err)
	}

	return rows, nil
}

// GetByID returns a single program row
func (r *HealthOfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProgramRow, error) {
	var row models.ProgramRow
	query := `SELECT * FROM health_program WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not_found: health program not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get health program: %w", err)
	}

	return &row, nil
}

// DeleteByJobID removes all rows of one batch
func (r *HealthOfferRepository) DeleteByJobID(ctx context.Context, jobID uuid.UUID) error {
	query := `DELETE FROM health_program WHERE job_id = $1`

	_, err := r.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete health programs for job %s: %w", jobID, err)
	}

	return nil
}

// CountByJobID returns how many distinct documents of a batch are stored
func (r *HealthOfferRepository) CountByJobID(ctx context.Context, jobID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT document_id) FROM health_program WHERE job_id = $1`

	err := r.db.GetContext(ctx, &count, query, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to count health documents for job %s: %w", jobID, err)
	}

	return count, nil
}
