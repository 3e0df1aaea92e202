package normalize

import (
	"testing"

	"offer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCascoNormalizer() *CascoNormalizer {
	return NewCascoNormalizer(CascoCatalog)
}

func TestCascoNormalize_PunctuatedLabels(t *testing.T) {
	coverage, err := testCascoNormalizer().Normalize(map[string]any{
		"insurer_name":        "Balta",
		"pdf_filename":        "balta_casco.pdf",
		"Pašrisks / EUR":      "140",
		"Zādzība, laupīšana":  true,
		"Palīdzība uz ceļa (24/7)": "jā",
		"Hidro trieciens":     "nav",
	})
	require.NoError(t, err)

	assert.Equal(t, "Balta", coverage.InsurerName)
	require.NotNil(t, coverage.PDFFilename)
	assert.Equal(t, "balta_casco.pdf", *coverage.PDFFilename)

	require.NotNil(t, coverage.DeductibleEUR)
	assert.Equal(t, 140.0, *coverage.DeductibleEUR)
	require.NotNil(t, coverage.Theft)
	assert.True(t, *coverage.Theft)
	require.NotNil(t, coverage.RoadsideAssistance)
	assert.True(t, *coverage.RoadsideAssistance)
	require.NotNil(t, coverage.HydroDamage)
	assert.False(t, *coverage.HydroDamage)
}

func TestCascoNormalize_UnrecognizedKeysIgnored(t *testing.T) {
	coverage, err := testCascoNormalizer().Normalize(map[string]any{
		"insurer_name":          "BTA",
		"Pilnīgi svešs lauks":   "vērtība",
		"Vēl viens svešs lauks": 123.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "BTA", coverage.InsurerName)
	for _, code := range models.CascoAttributeCodes() {
		_, ok := coverage.Attribute(code)
		assert.False(t, ok, "attribute %q must stay absent", code)
	}
}

func TestCascoNormalize_MissingInsurerNameFailsHard(t *testing.T) {
	_, err := testCascoNormalizer().Normalize(map[string]any{
		"Pašrisks": "140",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingMetadata)

	_, err = testCascoNormalizer().Normalize(nil)
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestCascoNormalize_TypeMismatchDropsValue(t *testing.T) {
	coverage, err := testCascoNormalizer().Normalize(map[string]any{
		"insurer_name": "Gjensidige",
		"Pašrisks":     "pēc vienošanās", // number row, unparseable
		"Zādzība":      "varbūt",         // bool row, unreadable
	})
	require.NoError(t, err)

	assert.Nil(t, coverage.DeductibleEUR)
	assert.Nil(t, coverage.Theft)
}

func TestCascoNormalize_NumberFormats(t *testing.T) {
	coverage, err := testCascoNormalizer().Normalize(map[string]any{
		"insurer_name":           "If",
		"Apdrošinājuma summa":    "15 000",
		"Prēmija, EUR":           "325,50 EUR",
		"Pašrisks":               140.0,
	})
	require.NoError(t, err)

	require.NotNil(t, coverage.InsuredSumEUR)
	assert.Equal(t, 15000.0, *coverage.InsuredSumEUR)
	require.NotNil(t, coverage.PremiumEUR)
	assert.Equal(t, 325.50, *coverage.PremiumEUR)
	require.NotNil(t, coverage.DeductibleEUR)
	assert.Equal(t, 140.0, *coverage.DeductibleEUR)
}

func TestCascoNormalize_ListAttribute(t *testing.T) {
	coverage, err := testCascoNormalizer().Normalize(map[string]any{
		"insurer_name":    "Balta",
		"Papildaprīkojums": []any{"diski", "audio sistēma"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"diski", "audio sistēma"}, coverage.AdditionalEquipment)

	coverage, err = testCascoNormalizer().Normalize(map[string]any{
		"insurer_name":    "Balta",
		"Papildaprīkojums": "diski; audio sistēma",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"diski", "audio sistēma"}, coverage.AdditionalEquipment)
}

// ============================================================================
// ROW / ATTRIBUTE PARITY
// ============================================================================

// The row catalogs and the data records must name exactly the same fields.
// A mismatch here is a build-breaking defect, not a rendering glitch.
func TestCascoRowCodes_MatchCoverageAttributes(t *testing.T) {
	rowCodes := make(map[string]bool)
	for _, row := range CascoComparisonRows() {
		assert.False(t, rowCodes[row.Code], "duplicate row code %q", row.Code)
		rowCodes[row.Code] = true
	}

	attrCodes := make(map[string]bool)
	for _, code := range models.CascoAttributeCodes() {
		attrCodes[code] = true
	}

	assert.Equal(t, attrCodes, rowCodes)
}

func TestHealthRowCodes_MatchFeatureCatalog(t *testing.T) {
	rows := HealthComparisonRows()
	require.Len(t, rows, len(HealthFeatureCatalog))
	for i, row := range rows {
		assert.Equal(t, HealthFeatureCatalog[i], row.Code)
	}
}

func TestCascoCatalog_AliasesUnambiguous(t *testing.T) {
	seen := make(map[string]string)
	for _, def := range CascoCatalog {
		for _, alias := range def.Aliases {
			norm := normalizeLabel(alias)
			if prev, ok := seen[norm]; ok {
				assert.Equal(t, def.Row.Code, prev, "alias %q maps to two codes", alias)
			}
			seen[norm] = def.Row.Code
		}
	}
}
