package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"offer-service/internal/database/redis"
	"offer-service/internal/models"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// jobKeyPrefix namespaces job state in Redis
const jobKeyPrefix = "offer:job:"

// jobTTL keeps finished batches queryable for a day before they expire
const jobTTL = 24 * time.Hour

// JobRepository tracks per-batch extraction progress in Redis. Workers report
// per-document outcomes concurrently, so updates serialize on a mutex; a
// single service instance owns its jobs, which keeps this sufficient without
// Redis-side locking.
type JobRepository struct {
	client *redis.Client
	mu     sync.Mutex
}

func NewJobRepository(client *redis.Client) *JobRepository {
	return &JobRepository{client: client}
}

func jobKey(jobID uuid.UUID) string {
	return jobKeyPrefix + jobID.String()
}

// CreateJob registers a new upload batch with every document pending
func (r *JobRepository) CreateJob(ctx context.Context, jobID uuid.UUID, product models.ProductType, documents []string) (*models.JobState, error) {
	now := time.Now()
	state := &models.JobState{
		JobID:     jobID,
		Product:   product,
		Status:    models.JobPending,
		Documents: make(map[string]models.ExtractionStatus, len(documents)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, doc := range documents {
		state.Documents[doc] = models.ExtractionPending
	}

	if err := r.save(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// GetJob loads one batch state; a missing key reports not found
func (r *JobRepository) GetJob(ctx context.Context, jobID uuid.UUID) (*models.JobState, error) {
	data, err := r.client.GetClient().Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, fmt.Errorf("not_found: job not found: %s", jobID)
		}
		return nil, fmt.Errorf("failed to get job state: %w", err)
	}

	var state models.JobState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job state: %w", err)
	}

	return &state, nil
}

// UpdateDocumentStatus records one document outcome and recomputes the
// aggregate batch status. The second return reports whether this update
// settled the whole batch, so the caller publishes the finished event exactly
// once.
func (r *JobRepository) UpdateDocumentStatus(ctx context.Context, jobID uuid.UUID, documentID string, status models.ExtractionStatus) (*models.JobState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.GetJob(ctx, jobID)
	if err != nil {
		return nil, false, err
	}

	if _, ok := state.Documents[documentID]; !ok {
		return nil, false, fmt.Errorf("not_found: document %s not part of job %s", documentID, jobID)
	}

	wasSettled := isSettled(state)
	state.Documents[documentID] = status
	state.Status = aggregateStatus(state)
	state.UpdatedAt = time.Now()

	if err := r.save(ctx, state); err != nil {
		return nil, false, err
	}

	return state, !wasSettled && isSettled(state), nil
}

func (r *JobRepository) save(ctx context.Context, state *models.JobState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal job state: %w", err)
	}

	if err := r.client.GetClient().Set(ctx, jobKey(state.JobID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job state: %w", err)
	}

	return nil
}

func isSettled(state *models.JobState) bool {
	for _, s := range state.Documents {
		if s == models.ExtractionPending {
			return false
		}
	}
	return true
}

// aggregateStatus derives the batch status from document outcomes: failed
// only when every document errored, completed when all settled, processing
// while any extraction is still pending.
func aggregateStatus(state *models.JobState) models.JobStatus {
	if len(state.Documents) == 0 {
		return models.JobCompleted
	}

	pending, errored := 0, 0
	for _, s := range state.Documents {
		switch s {
		case models.ExtractionPending:
			pending++
		case models.ExtractionError:
			errored++
		}
	}

	if pending > 0 {
		return models.JobProcessing
	}
	if errored == len(state.Documents) {
		return models.JobFailed
	}
	return models.JobCompleted
}
