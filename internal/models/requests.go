package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadResponse is returned after PDFs were accepted for a job.
type UploadResponse struct {
	JobID     uuid.UUID   `json:"job_id"`
	Product   ProductType `json:"product"`
	Documents []string    `json:"documents"`
}

// JobState is the Redis-backed progress record for one upload batch.
type JobState struct {
	JobID     uuid.UUID                   `json:"job_id"`
	Product   ProductType                 `json:"product"`
	Status    JobStatus                   `json:"status"`
	Documents map[string]ExtractionStatus `json:"documents"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// CoverageUpdateRequest carries a user edit for one stored CASCO coverage.
// Only the attributes present in Fields are touched; everything else in the
// stored payload stays as extracted.
type CoverageUpdateRequest struct {
	Fields map[string]any `json:"fields"`
}

// ExtractionFinishedEvent is published to RabbitMQ when a whole job settles.
type ExtractionFinishedEvent struct {
	JobID       uuid.UUID   `json:"job_id"`
	Product     ProductType `json:"product"`
	Documents   int         `json:"documents"`
	Failed      int         `json:"failed"`
	CompletedAt time.Time   `json:"completed_at"`
}
