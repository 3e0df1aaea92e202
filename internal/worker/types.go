package worker

import (
	"context"

	"github.com/google/uuid"

	"offer-service/internal/models"
)

// Job is one unit of extraction work: a single uploaded document belonging to
// an upload batch.
type Job struct {
	JobID      uuid.UUID
	DocumentID string
	Product    models.ProductType
	Run        func(ctx context.Context) error
}
