package normalize

import "offer-service/internal/models"

// ============================================================================
// HEALTH FEATURE CATALOG
// ============================================================================

// Catalog keys referenced by business rules. The remaining keys only appear
// in the ordered catalog below.
const (
	FeatProgramName      = "Programmas nosaukums"
	FeatProgramCode      = "Programmas kods"
	FeatBaseSum          = "Apdrošinājuma summa"
	FeatPremium          = "Prēmija 1 darbiniekam, EUR"
	FeatPaymentMethod    = "Apmaksas veids"
	FeatCoPayment        = "Pacienta iemaksa"
	FeatMaternity        = "Maternitātes aprūpe"
	FeatDiagnostics      = "Diagnostiskie izmeklējumi"
	FeatInpatient        = "Maksas stacionārie pakalpojumi"
	FeatInpatientAddOn   = "Maksas stacionārie pakalpojumi (papildprogramma)"
	FeatDentalDiscount   = "Zobārstniecība ar atlaidi, apdrošinājuma summa"
	FeatCriticalIllness  = "Kritiskās saslimšanas"
	FeatOutpatientRehab  = "Ambulatorā rehabilitācija"
	FeatRehabAddOn       = "Ambulatorā rehabilitācija (papildprogramma)"
	FeatMedsWithDiscount = "Medikamenti ar atlaidi"
	FeatSports           = "Sports"
)

// HealthFeatureCatalog is the fixed ordered field list every normalized
// program is projected onto. Order matters: the comparison UI renders rows in
// this order.
var HealthFeatureCatalog = []string{
	FeatProgramName,
	FeatProgramCode,
	FeatBaseSum,
	FeatPremium,
	FeatPaymentMethod,
	FeatCoPayment,
	"Ģimenes ārsta pakalpojumi",
	"Ārstu speciālistu konsultācijas",
	"Profesoru un docentu konsultācijas",
	FeatDiagnostics,
	"Laboratoriskie izmeklējumi",
	"Augsto tehnoloģiju izmeklējumi (MR, CT)",
	"Fizikālās terapijas procedūras",
	"Ārstnieciskās manipulācijas",
	"Dienas stacionārs",
	FeatInpatient,
	FeatInpatientAddOn,
	"Obligātās veselības pārbaudes",
	"Vakcinācija",
	FeatMaternity,
	FeatDentalDiscount,
	"Zobu higiēna",
	FeatCriticalIllness,
	FeatOutpatientRehab,
	FeatRehabAddOn,
	FeatMedsWithDiscount,
	FeatSports,
	"Optika",
	"Psihoterapeita konsultācijas",
	"Homeopāta konsultācijas",
	"Neatliekamā medicīniskā palīdzība",
	"Ārstniecības iestāžu tīkls",
	"Līguma darbības teritorija",
	"Pakalpojumu apmaksas limits mēnesī",
	"Atlīdzību pieteikumu izskatīšanas termiņš",
	"Telemedicīnas pakalpojumi",
	"Traumatoloģija un traumu aprūpe",
}

// HealthLegacyKeys migrates misspelled keys produced by earlier extraction
// prompts. A legacy value is copied only when the corrected key is absent.
var HealthLegacyKeys = map[string]string{
	"Pacientu iemaksa":                        FeatCoPayment,
	"Medikamenti ar atlaidēm":                 FeatMedsWithDiscount,
	"Profesoru, docentu konsultācijas":        "Profesoru un docentu konsultācijas",
	"Augsto tehnoloģiju izmeklējumi (MR,CT)":  "Augsto tehnoloģiju izmeklējumi (MR, CT)",
	"Atlīdzību izskatīšanas termiņš":          "Atlīdzību pieteikumu izskatīšanas termiņš",
}

// AddOnRule classifies a bundled add-on program by Latvian keyword stems in
// its name and tells the folder which base-program feature receives its
// signal.
type AddOnRule struct {
	// Stems are lowercase substrings of the add-on program name.
	Stems []string
	// SubStem, when set, must also occur in the name for the rule to match.
	SubStem string
	// Target is the base-program feature the folded value lands in.
	Target string
	// Source, when set, names an add-on feature whose explicit value is
	// preferred over the formatted sum.
	Source string
	// Presence folds the Included marker instead of a formatted sum.
	Presence bool
}

// HealthAddOnRules drive program folding. Order matters: the first matching
// rule claims the add-on.
var HealthAddOnRules = []AddOnRule{
	{Stems: []string{"zob"}, Target: FeatDentalDiscount},
	{Stems: []string{"kritisk"}, Target: FeatCriticalIllness},
	{Stems: []string{"rehabilit"}, SubStem: "ambulator", Target: FeatRehabAddOn},
	{Stems: []string{"medikament"}, Target: FeatMedsWithDiscount, Source: FeatMedsWithDiscount},
	{Stems: []string{"sport"}, Target: FeatSports, Source: FeatSports},
	{Stems: []string{"stacionār", "stacionar"}, Target: FeatInpatientAddOn, Source: FeatInpatientAddOn, Presence: true},
}

// HealthAddOnMarkers are generic name stems that mark a program as an add-on
// even when no folding rule matches it.
var HealthAddOnMarkers = []string{"papildprogramma", "papildu programma"}

// VendorOverride is a narrow insurer-specific defaulting rule kept as data so
// it can be extended without touching the transform.
type VendorOverride struct {
	InsurerCodeContains string
	ProgramCodeContains string
	Feature             string
	Value               string
}

// HealthVendorOverrides: BTA's V2 programs include diagnostics but their
// offer sheets omit the row, so an empty field defaults to Included.
var HealthVendorOverrides = []VendorOverride{
	{InsurerCodeContains: "BTA", ProgramCodeContains: "V2", Feature: FeatDiagnostics, Value: Included},
}

// HealthConfig bundles every table the health normalizer consumes. Callers
// normally take DefaultHealthConfig; tests swap individual tables.
type HealthConfig struct {
	Catalog            []string
	LegacyKeys         map[string]string
	AddOnRules         []AddOnRule
	AddOnMarkers       []string
	VendorOverrides    []VendorOverride
	PaymentMethodLabel string
	CoPaymentDefault   string
}

func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		Catalog:         HealthFeatureCatalog,
		LegacyKeys:      HealthLegacyKeys,
		AddOnRules:      HealthAddOnRules,
		AddOnMarkers:    HealthAddOnMarkers,
		VendorOverrides: HealthVendorOverrides,
		// Business policy, not document content: group offers are always
		// settled by employer list payment.
		PaymentMethodLabel: "Saraksta apmaksa",
		CoPaymentDefault:   "100%",
	}
}

// HealthComparisonRows builds the health row catalog straight from the
// feature catalog so the row/field parity invariant holds by construction.
func HealthComparisonRows() []models.ComparisonRow {
	rows := make([]models.ComparisonRow, 0, len(HealthFeatureCatalog))
	for _, key := range HealthFeatureCatalog {
		rows = append(rows, models.ComparisonRow{
			Code:  key,
			Label: key,
			Group: "Veselības apdrošināšana",
			Type:  models.RowText,
		})
	}
	return rows
}

// ============================================================================
// CASCO COVERAGE CATALOG
// ============================================================================

// CascoRowDef declares one canonical CASCO attribute: its comparison row and
// the raw label spellings the extractor is known to produce for it. Raw labels
// are free-form Latvian with slashes, dots, parentheses and uneven spacing;
// matching happens on a normalized form of the label.
type CascoRowDef struct {
	Row     models.ComparisonRow
	Aliases []string
}

// CascoCatalog is the single source of truth for CASCO attribute naming. Row
// codes must equal the attribute codes of models.CascoCoverage (test-enforced).
var CascoCatalog = []CascoRowDef{
	{
		Row:     models.ComparisonRow{Code: models.CascoInsuredSum, Label: "Apdrošinājuma summa, EUR", Group: "Pamatnosacījumi", Type: models.RowNumber},
		Aliases: []string{"Apdrošinājuma summa", "Apdrošinājuma summa, EUR", "Apdrošinājuma summa (EUR)"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoPremium, Label: "Prēmija, EUR", Group: "Pamatnosacījumi", Type: models.RowNumber},
		Aliases: []string{"Prēmija", "Prēmija, EUR", "Apdrošināšanas prēmija", "Gada prēmija"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoDeductible, Label: "Pašrisks, EUR", Group: "Pamatnosacījumi", Type: models.RowNumber},
		Aliases: []string{"Pašrisks", "Pašrisks, EUR", "Pašrisks / EUR", "Pašrisks (EUR)"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoTerritory, Label: "Darbības teritorija", Group: "Pamatnosacījumi", Type: models.RowText},
		Aliases: []string{"Darbības teritorija", "Apdrošināšanas teritorija", "Teritorija"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoTheft, Label: "Zādzība / laupīšana", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Zādzība", "Zādzība / laupīšana", "Zādzība, laupīšana", "Zādzība un laupīšana"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoTotalLoss, Label: "Atlīdzība pilnīgas bojāejas gadījumā", Group: "Riski", Type: models.RowText},
		Aliases: []string{"Pilnīga bojāeja", "Atlīdzība pilnīgas bojāejas gadījumā", "Pilnīgas bojāejas atlīdzība"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoNewValue, Label: "Jaunvērtības apdrošināšana", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Jaunvērtība", "Jaunvērtības apdrošināšana"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoReplacementCar, Label: "Maiņas auto", Group: "Papildu pakalpojumi", Type: models.RowText},
		Aliases: []string{"Maiņas auto", "Maiņas automašīna", "Aizvietošanas auto"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoRoadsideAssistance, Label: "Palīdzība uz ceļa 24/7", Group: "Papildu pakalpojumi", Type: models.RowBool},
		Aliases: []string{"Palīdzība uz ceļa 24/7", "Palīdzība uz ceļa (24/7)", "Autopalīdzība 24/7", "Palīdzība uz ceļa"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoGlassCoverage, Label: "Stiklojums", Group: "Riski", Type: models.RowText},
		Aliases: []string{"Stiklojums", "Stiklu apdrošināšana", "Stiklojuma bojājumi"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoTireCoverage, Label: "Riepu apdrošināšana", Group: "Papildu pakalpojumi", Type: models.RowBool},
		Aliases: []string{"Riepas", "Riepu apdrošināšana", "Riepu bojājumi"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoLuggageCoverage, Label: "Bagāžas apdrošināšana", Group: "Papildu pakalpojumi", Type: models.RowBool},
		Aliases: []string{"Bagāža", "Bagāžas apdrošināšana"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoHydroDamage, Label: "Hidrotrieciens", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Hidrotrieciens", "Hidro trieciens", "Hidrotrieciena risks"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoVandalism, Label: "Vandālisms", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Vandālisms", "Vandalisms", "Trešo personu prettiesiska rīcība"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoNaturalDisasters, Label: "Dabas stihijas", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Dabas stihijas", "Dabas stihiju postījumi", "Dabas spēku iedarbība"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoCollisionWithAnimals, Label: "Sadursme ar dzīvnieku", Group: "Riski", Type: models.RowBool},
		Aliases: []string{"Sadursme ar dzīvnieku", "Sadursme ar dzīvniekiem"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoKeyReplacement, Label: "Atslēgu atjaunošana", Group: "Papildu pakalpojumi", Type: models.RowBool},
		Aliases: []string{"Atslēgu atjaunošana", "Atslēgu nozaudēšana", "Atslēgas"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoAdditionalEquipment, Label: "Papildaprīkojums", Group: "Papildu pakalpojumi", Type: models.RowList},
		Aliases: []string{"Papildaprīkojums", "Papildaprīkojuma apdrošināšana"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoPaymentSchedule, Label: "Maksājumu grafiks", Group: "Pamatnosacījumi", Type: models.RowText},
		Aliases: []string{"Maksājumu grafiks", "Maksājuma veids", "Apmaksas grafiks"},
	},
	{
		Row:     models.ComparisonRow{Code: models.CascoRepairShopChoice, Label: "Remonta vieta", Group: "Papildu pakalpojumi", Type: models.RowText},
		Aliases: []string{"Remonta vieta", "Servisa izvēle", "Remonts"},
	},
}

// CascoComparisonRows returns the CASCO row catalog in catalog order.
func CascoComparisonRows() []models.ComparisonRow {
	rows := make([]models.ComparisonRow, 0, len(CascoCatalog))
	for _, def := range CascoCatalog {
		rows = append(rows, def.Row)
	}
	return rows
}
