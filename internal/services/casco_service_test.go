package services

import (
	"context"
	"testing"

	"offer-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCoverage_RejectsUnknownAttribute(t *testing.T) {
	service := NewCascoService(nil)

	_, err := service.UpdateCoverage(context.Background(), uuid.New(), models.CoverageUpdateRequest{
		Fields: map[string]any{"made_up_attribute": true},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown coverage attribute")
}

func TestUpdateCoverage_RejectsEmptyEdit(t *testing.T) {
	service := NewCascoService(nil)

	_, err := service.UpdateCoverage(context.Background(), uuid.New(), models.CoverageUpdateRequest{})

	require.Error(t, err)
}

func TestDecodeCoverage(t *testing.T) {
	payload := models.JSONMap{
		"insurer_name":    "If",
		"deductible_eur":  float64(140),
		"theft":           true,
		"territory":       "Baltija un Eiropa",
		"additional_equipment": []any{"Bērnu sēdeklis"},
	}

	coverage, err := decodeCoverage(payload)

	require.NoError(t, err)
	assert.Equal(t, "If", coverage.InsurerName)
	require.NotNil(t, coverage.DeductibleEUR)
	assert.Equal(t, 140.0, *coverage.DeductibleEUR)
	require.NotNil(t, coverage.Theft)
	assert.True(t, *coverage.Theft)
	assert.Equal(t, []string{"Bērnu sēdeklis"}, coverage.AdditionalEquipment)
}

func TestDecodeCoverage_RejectsWrongType(t *testing.T) {
	// A user edit that puts a string where a number belongs must fail the
	// whole edit instead of storing a payload the matrix cannot read.
	payload := models.JSONMap{
		"insurer_name":   "If",
		"deductible_eur": "cheap",
	}

	_, err := decodeCoverage(payload)

	require.Error(t, err)
}

func TestDecodeCoverage_RequiresInsurerName(t *testing.T) {
	_, err := decodeCoverage(models.JSONMap{"theft": true})

	require.Error(t, err)
}
