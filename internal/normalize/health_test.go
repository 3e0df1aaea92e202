package normalize

import (
	"testing"

	"offer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func testNormalizer() *HealthNormalizer {
	return NewHealthNormalizer(DefaultHealthConfig())
}

func rawProgram(code string, features map[string]any) models.RawProgram {
	return models.RawProgram{ProgramCode: code, Features: features}
}

func rawOffer(programs ...models.RawProgram) models.RawHealthOffer {
	return models.RawHealthOffer{
		DocumentID:  "doc-1",
		InsurerCode: "BAL",
		Insurer:     "Balta",
		Company:     "SIA Piemērs",
		Programs:    programs,
	}
}

func baseOf(t *testing.T, doc models.NormalizedOfferDocument) models.NormalizedProgram {
	t.Helper()
	require.Len(t, doc.Programs, 1)
	return doc.Programs[0]
}

// ============================================================================
// CATALOG PROJECTION
// ============================================================================

func TestNormalizeOffer_CatalogComplete(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			"Ģimenes ārsta pakalpojumi": "iekļauts",
		}),
	))

	base := baseOf(t, doc)
	assert.Len(t, base.Features, len(HealthFeatureCatalog))
	for _, key := range HealthFeatureCatalog {
		_, ok := base.Features[key]
		assert.True(t, ok, "catalog key %q must always be present", key)
	}
	assert.Equal(t, "iekļauts", base.Features["Ģimenes ārsta pakalpojumi"])
	assert.Equal(t, Missing, base.Features["Optika"], "absent keys degrade to the sentinel")
}

func TestHealthFeatureCatalog_Has37Fields(t *testing.T) {
	assert.Len(t, HealthFeatureCatalog, 37)

	seen := make(map[string]bool)
	for _, key := range HealthFeatureCatalog {
		assert.False(t, seen[key], "duplicate catalog key %q", key)
		seen[key] = true
	}
}

func TestNormalizeOffer_LegacyKeyMigration(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			"Pacientu iemaksa": "30%", // old misspelled key
		}),
	))

	base := baseOf(t, doc)
	assert.Equal(t, "30%", base.Features[FeatCoPayment])
}

func TestNormalizeOffer_LegacyKeyNeverOverwrites(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			"Pacientu iemaksa": "30%",
			FeatCoPayment:      "50%",
		}),
	))

	base := baseOf(t, doc)
	assert.Equal(t, "50%", base.Features[FeatCoPayment], "populated corrected key wins")
}

// ============================================================================
// BUSINESS RULES
// ============================================================================

func TestNormalizeOffer_PaymentMethodAlwaysOverridden(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			FeatPaymentMethod: "pēc vienošanās",
		}),
	))

	base := baseOf(t, doc)
	assert.Equal(t, "Saraksta apmaksa", base.Features[FeatPaymentMethod])
}

func TestNormalizeOffer_MaternityReducedToPresence(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			FeatMaternity: "pilna aprūpe līdz 2000 EUR",
		}),
	))

	assert.Equal(t, Included, baseOf(t, doc).Features[FeatMaternity])
}

func TestNormalizeOffer_ProgramCodePrecedence(t *testing.T) {
	n := testNormalizer()

	// Scalar program_code wins.
	doc := n.NormalizeOffer(rawOffer(models.RawProgram{
		ProgramCode: "V2+",
		Features:    map[string]any{FeatProgramCode: "cits", FeatProgramName: "Pamata"},
	}))
	assert.Equal(t, "V2+", baseOf(t, doc).ProgramCode)

	// Then the program-code feature.
	doc = n.NormalizeOffer(rawOffer(rawProgram("", map[string]any{
		FeatProgramCode: "V3",
		FeatProgramName: "Pamata",
	})))
	assert.Equal(t, "V3", baseOf(t, doc).ProgramCode)

	// Then the program-name feature, else the sentinel.
	doc = n.NormalizeOffer(rawOffer(rawProgram("", map[string]any{
		FeatProgramName: "Pamata programma",
	})))
	assert.Equal(t, "Pamata programma", baseOf(t, doc).ProgramCode)

	doc = n.NormalizeOffer(rawOffer(rawProgram("", map[string]any{})))
	assert.Equal(t, Missing, baseOf(t, doc).ProgramCode)
}

func TestNormalizeOffer_BaseSumBackfill(t *testing.T) {
	n := testNormalizer()

	// Scalar present, feature empty: feature patched from scalar.
	doc := n.NormalizeOffer(rawOffer(models.RawProgram{
		ProgramCode: "Pamatprogramma",
		BaseSumEUR:  1500.0,
		Features:    map[string]any{},
	}))
	base := baseOf(t, doc)
	assert.Equal(t, int64(1500), base.BaseSumEUR.Val)
	assert.Equal(t, "1500", base.Features[FeatBaseSum])

	// Scalar missing: backfilled from the feature.
	doc = n.NormalizeOffer(rawOffer(rawProgram("Pamatprogramma", map[string]any{
		FeatBaseSum: "2500",
	})))
	base = baseOf(t, doc)
	assert.Equal(t, int64(2500), base.BaseSumEUR.Val)
	assert.Equal(t, "2500", base.Features[FeatBaseSum])

	// Both missing stays missing.
	doc = n.NormalizeOffer(rawOffer(rawProgram("Pamatprogramma", map[string]any{})))
	base = baseOf(t, doc)
	assert.False(t, base.BaseSumEUR.Known)
	assert.Equal(t, Missing, base.Features[FeatBaseSum])
}

func TestNormalizeOffer_PremiumBackfill(t *testing.T) {
	n := testNormalizer()

	doc := n.NormalizeOffer(rawOffer(models.RawProgram{
		ProgramCode: "Pamatprogramma",
		PremiumEUR:  "325.50 EUR",
		Features:    map[string]any{},
	}))
	base := baseOf(t, doc)
	assert.Equal(t, "325.50", base.PremiumEUR)
	assert.Equal(t, "325.50", base.Features[FeatPremium])

	doc = n.NormalizeOffer(rawOffer(rawProgram("Pamatprogramma", map[string]any{
		FeatPremium: "410 EUR",
	})))
	assert.Equal(t, "410", baseOf(t, doc).PremiumEUR)
}

// ============================================================================
// ADD-ON FOLDING
// ============================================================================

func TestNormalizeOffer_FoldingReducesToOne(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma V2", map[string]any{}),
		models.RawProgram{ProgramCode: "Zobārstniecības papildprogramma", BaseSumEUR: 150.0},
		models.RawProgram{ProgramCode: "Kritisko saslimšanu programma", BaseSumEUR: 5000.0},
	))

	require.Len(t, doc.Programs, 1)
	base := doc.Programs[0]
	assert.Equal(t, "Pamatprogramma V2", base.ProgramCode)
	assert.Equal(t, "150 EUR", base.Features[FeatDentalDiscount])
	assert.Equal(t, "5000 EUR", base.Features[FeatCriticalIllness])
}

func TestNormalizeOffer_FoldingNeverOverwritesExplicitData(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{
			FeatDentalDiscount: "jau zināms 300 EUR",
		}),
		models.RawProgram{ProgramCode: "Zobārstniecība papildprogramma", BaseSumEUR: 150.0},
	))

	base := baseOf(t, doc)
	assert.Equal(t, "jau zināms 300 EUR", base.Features[FeatDentalDiscount],
		"explicit base value wins over inherited add-on value")
}

func TestNormalizeOffer_RehabFoldRequiresOutpatient(t *testing.T) {
	n := testNormalizer()

	doc := n.NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{ProgramCode: "Ambulatorā rehabilitācija papildprogramma", BaseSumEUR: 200.0},
	))
	assert.Equal(t, "200 EUR", baseOf(t, doc).Features[FeatRehabAddOn])

	// Rehabilitation add-on without the outpatient marker folds nothing.
	doc = n.NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{ProgramCode: "Rehabilitācijas programma", BaseSumEUR: 200.0},
	))
	assert.Equal(t, Missing, baseOf(t, doc).Features[FeatRehabAddOn])
}

func TestNormalizeOffer_MedicationFoldPrefersExplicitFeature(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{
			ProgramCode: "Medikamentu papildprogramma",
			BaseSumEUR:  100.0,
			Features:    map[string]any{FeatMedsWithDiscount: "50% atlaide"},
		},
	))

	assert.Equal(t, "50% atlaide", baseOf(t, doc).Features[FeatMedsWithDiscount])
}

func TestNormalizeOffer_InpatientFoldIsPresenceOnly(t *testing.T) {
	n := testNormalizer()

	doc := n.NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{ProgramCode: "Stacionārā papildprogramma", BaseSumEUR: 3000.0},
	))
	assert.Equal(t, Included, baseOf(t, doc).Features[FeatInpatientAddOn])

	// Zero sum and no explicit feature: nothing to signal.
	doc = n.NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{ProgramCode: "Stacionārā papildprogramma", BaseSumEUR: 0.0},
	))
	assert.Equal(t, Missing, baseOf(t, doc).Features[FeatInpatientAddOn])
}

func TestNormalizeOffer_UnparseableAddOnSumNotCopied(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
		models.RawProgram{ProgramCode: "Sporta papildprogramma", BaseSumEUR: "pēc izvēles"},
	))

	assert.Equal(t, Missing, baseOf(t, doc).Features[FeatSports])
}

func TestNormalizeOffer_AllAddOnProgramsFallBackToFirst(t *testing.T) {
	// Documented fallback: when no non-add-on program exists the base is the
	// first program of the input list, exactly.
	doc := testNormalizer().NormalizeOffer(rawOffer(
		models.RawProgram{ProgramCode: "Zobārstniecības papildprogramma", BaseSumEUR: 150.0},
		models.RawProgram{ProgramCode: "Sporta papildprogramma", BaseSumEUR: 80.0},
	))

	require.Len(t, doc.Programs, 1)
	assert.Equal(t, "Zobārstniecības papildprogramma", doc.Programs[0].ProgramCode)
	assert.Equal(t, "80 EUR", doc.Programs[0].Features[FeatSports],
		"the remaining add-on still folds into the fallback base")
}

// ============================================================================
// DEFAULTS AND OVERRIDES
// ============================================================================

func TestNormalizeOffer_CoPaymentDefault(t *testing.T) {
	doc := testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{}),
	))
	assert.Equal(t, "100%", baseOf(t, doc).Features[FeatCoPayment])

	doc = testNormalizer().NormalizeOffer(rawOffer(
		rawProgram("Pamatprogramma", map[string]any{FeatCoPayment: "25%"}),
	))
	assert.Equal(t, "25%", baseOf(t, doc).Features[FeatCoPayment])
}

func TestNormalizeOffer_VendorOverride(t *testing.T) {
	n := testNormalizer()

	offer := rawOffer(rawProgram("Programma V2", map[string]any{}))
	offer.InsurerCode = "BTA-LV"
	doc := n.NormalizeOffer(offer)
	assert.Equal(t, Included, baseOf(t, doc).Features[FeatDiagnostics])

	// Different insurer: no override.
	offer = rawOffer(rawProgram("Programma V2", map[string]any{}))
	offer.InsurerCode = "BAL"
	doc = n.NormalizeOffer(offer)
	assert.Equal(t, Missing, baseOf(t, doc).Features[FeatDiagnostics])

	// Matching insurer but explicit value: no override.
	offer = rawOffer(rawProgram("Programma V2", map[string]any{
		FeatDiagnostics: "limits 500 EUR",
	}))
	offer.InsurerCode = "BTA-LV"
	doc = n.NormalizeOffer(offer)
	assert.Equal(t, "limits 500 EUR", baseOf(t, doc).Features[FeatDiagnostics])
}

// ============================================================================
// EDGE CASES AND DOCUMENT ASSEMBLY
// ============================================================================

func TestNormalizeOffer_ZeroPrograms(t *testing.T) {
	var doc models.NormalizedOfferDocument
	assert.NotPanics(t, func() {
		doc = testNormalizer().NormalizeOffer(rawOffer())
	})
	assert.Empty(t, doc.Programs)
}

func TestNormalizeOffer_Metadata(t *testing.T) {
	raw := models.RawHealthOffer{
		DocumentID:   "doc-9",
		InsurerCode:  nil,
		Insurer:      "Balta",
		Company:      map[string]any{"value": "SIA Piemērs"},
		InsuredCount: "120",
		InquiryID:    "",
		Warnings:     []any{"low confidence on premium", nil, "   "},
		Programs:     []models.RawProgram{rawProgram("Pamatprogramma", map[string]any{})},
	}

	doc := testNormalizer().NormalizeOffer(raw)
	assert.Equal(t, "doc-9", doc.DocumentID)
	assert.Equal(t, Missing, doc.InsurerCode)
	assert.Equal(t, "Balta", doc.Insurer)
	assert.Equal(t, "SIA Piemērs", doc.Company)
	assert.Equal(t, int64(120), doc.InsuredCount.Val)
	assert.Equal(t, Missing, doc.InquiryID)
	assert.Equal(t, []string{"low confidence on premium"}, doc.Warnings)
}
