package repository

import (
	"testing"

	"offer-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func stateWith(statuses map[string]models.ExtractionStatus) *models.JobState {
	return &models.JobState{
		JobID:     uuid.New(),
		Product:   models.ProductHealth,
		Documents: statuses,
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name      string
		documents map[string]models.ExtractionStatus
		want      models.JobStatus
	}{
		{
			name:      "all pending",
			documents: map[string]models.ExtractionStatus{"a": models.ExtractionPending, "b": models.ExtractionPending},
			want:      models.JobProcessing,
		},
		{
			name:      "partially settled",
			documents: map[string]models.ExtractionStatus{"a": models.ExtractionParsed, "b": models.ExtractionPending},
			want:      models.JobProcessing,
		},
		{
			name:      "all parsed",
			documents: map[string]models.ExtractionStatus{"a": models.ExtractionParsed, "b": models.ExtractionParsed},
			want:      models.JobCompleted,
		},
		{
			name:      "mixed outcome still completes",
			documents: map[string]models.ExtractionStatus{"a": models.ExtractionParsed, "b": models.ExtractionError},
			want:      models.JobCompleted,
		},
		{
			name:      "all errored",
			documents: map[string]models.ExtractionStatus{"a": models.ExtractionError, "b": models.ExtractionError},
			want:      models.JobFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregateStatus(stateWith(tt.documents)))
		})
	}
}

func TestIsSettled(t *testing.T) {
	assert.False(t, isSettled(stateWith(map[string]models.ExtractionStatus{
		"a": models.ExtractionParsed,
		"b": models.ExtractionPending,
	})))

	assert.True(t, isSettled(stateWith(map[string]models.ExtractionStatus{
		"a": models.ExtractionParsed,
		"b": models.ExtractionError,
	})))

	assert.True(t, isSettled(stateWith(map[string]models.ExtractionStatus{})))
}
