package compare

import (
	"encoding/json"
	"testing"

	"offer-service/internal/models"
	"offer-service/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coverage(insurer string, deductible float64, theft bool) *models.CascoCoverage {
	return &models.CascoCoverage{
		InsurerName:   insurer,
		DeductibleEUR: &deductible,
		Theft:         &theft,
	}
}

func asColumns(coverages ...*models.CascoCoverage) []ColumnRecord {
	records := make([]ColumnRecord, 0, len(coverages))
	for _, c := range coverages {
		records = append(records, c)
	}
	return records
}

func TestBuildMatrix_Dense(t *testing.T) {
	rows := normalize.CascoComparisonRows()
	matrix := BuildMatrix(rows, asColumns(
		coverage("Balta", 140, true),
		coverage("BTA", 190, false),
	))

	assert.Equal(t, []string{"Balta", "BTA"}, matrix.Columns)

	// Every (row, column) pair has an entry, possibly nil.
	assert.Len(t, matrix.Values, len(rows)*2)
	for _, row := range rows {
		for _, col := range matrix.Columns {
			_, ok := matrix.Values[models.CellKey{Code: row.Code, Insurer: col}]
			assert.True(t, ok, "missing cell %s::%s", row.Code, col)
		}
	}

	assert.Equal(t, 140.0, matrix.Values[models.CellKey{Code: models.CascoDeductible, Insurer: "Balta"}])
	assert.Equal(t, false, matrix.Values[models.CellKey{Code: models.CascoTheft, Insurer: "BTA"}])
	// Absent attribute surfaces as nil, never a synthesized value.
	assert.Nil(t, matrix.Values[models.CellKey{Code: models.CascoTerritory, Insurer: "Balta"}])
}

func TestBuildMatrix_ColumnsKeepInputOrder(t *testing.T) {
	matrix := BuildMatrix(normalize.CascoComparisonRows(), asColumns(
		coverage("Seesam", 100, true),
		coverage("Balta", 140, true),
		coverage("BTA", 190, true),
	))
	assert.Equal(t, []string{"Seesam", "Balta", "BTA"}, matrix.Columns)
}

func TestBuildMatrix_DuplicateInsurerLastWriteWins(t *testing.T) {
	// Known limitation, documented behavior: two offers under the same
	// insurer name collide in the flat value map and the second one wins.
	matrix := BuildMatrix(normalize.CascoComparisonRows(), asColumns(
		coverage("Balta", 140, true),
		coverage("Balta", 250, false),
	))

	assert.Equal(t, []string{"Balta", "Balta"}, matrix.Columns, "columns are not deduplicated")
	assert.Equal(t, 250.0, matrix.Values[models.CellKey{Code: models.CascoDeductible, Insurer: "Balta"}])
	assert.Equal(t, false, matrix.Values[models.CellKey{Code: models.CascoTheft, Insurer: "Balta"}])
}

func TestBuildMatrix_EmptyInput(t *testing.T) {
	matrix := BuildMatrix(normalize.CascoComparisonRows(), nil)
	assert.Empty(t, matrix.Columns)
	assert.Empty(t, matrix.Values)
}

func TestComparisonMatrix_WireFormat(t *testing.T) {
	matrix := BuildMatrix(normalize.CascoComparisonRows(), asColumns(coverage("Balta", 140, true)))

	raw, err := json.Marshal(matrix)
	require.NoError(t, err)

	var decoded struct {
		Rows    []models.ComparisonRow `json:"rows"`
		Columns []string               `json:"columns"`
		Values  map[string]any         `json:"values"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, []string{"Balta"}, decoded.Columns)
	assert.Equal(t, 140.0, decoded.Values["deductible_eur::Balta"],
		`cells serialize under the historical "code::insurer" key`)
	v, ok := decoded.Values["territory::Balta"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestHealthColumn_Lookup(t *testing.T) {
	group := models.OfferGroup{
		Insurer: "Balta",
		Programs: []models.NormalizedProgram{{
			Features: map[string]string{normalize.FeatCoPayment: "100%"},
		}},
	}

	col := HealthColumn{Group: group}
	assert.Equal(t, "Balta", col.ColumnName())

	v, ok := col.Attribute(normalize.FeatCoPayment)
	assert.True(t, ok)
	assert.Equal(t, "100%", v)

	_, ok = col.Attribute("nav tāda lauka")
	assert.False(t, ok)

	empty := HealthColumn{Group: models.OfferGroup{Insurer: "BTA"}}
	_, ok = empty.Attribute(normalize.FeatCoPayment)
	assert.False(t, ok, "a document without programs has no attributes")
}
