package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"offer-service/internal/models"
)

// ErrMissingMetadata marks a CASCO extraction that violates the upstream
// contract. Sparse coverage data is fine; a record without an insurer name is
// not, and this is the one place normalization fails hard.
var ErrMissingMetadata = errors.New("casco extraction missing required metadata")

// Metadata keys the extractor always emits alongside the coverage labels.
const (
	cascoInsurerNameKey = "insurer_name"
	cascoPDFFilenameKey = "pdf_filename"
)

// CascoNormalizer maps free-form extracted Latvian labels onto the canonical
// coverage attributes. The mapping is a data-driven alias table; unrecognized
// labels are dropped, never invented.
type CascoNormalizer struct {
	// aliasToCode: normalized raw label → attribute code
	aliasToCode map[string]string
	// rowTypes: attribute code → declared row type, drives value coercion
	rowTypes map[string]models.RowType
}

func NewCascoNormalizer(catalog []CascoRowDef) *CascoNormalizer {
	n := &CascoNormalizer{
		aliasToCode: make(map[string]string),
		rowTypes:    make(map[string]models.RowType, len(catalog)),
	}
	for _, def := range catalog {
		n.rowTypes[def.Row.Code] = def.Row.Type
		for _, alias := range def.Aliases {
			n.aliasToCode[normalizeLabel(alias)] = def.Row.Code
		}
	}
	return n
}

// normalizeLabel folds the punctuation noise of free-form Latvian labels:
// case, en-dashes, slashes, dots, parentheses and uneven spacing.
func normalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	replacer := strings.NewReplacer(
		"–", " ", // en-dash
		"—", " ", // em-dash
		"/", " ",
		".", " ",
		",", " ",
		"(", " ",
		")", " ",
		"-", " ",
	)
	s = replacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Normalize maps one raw extraction onto a CascoCoverage and validates the
// result structurally. Coverage attributes are all optional; required
// metadata is not.
func (n *CascoNormalizer) Normalize(raw map[string]any) (*models.CascoCoverage, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty extraction", ErrMissingMetadata)
	}

	insurer := Unwrap(raw[cascoInsurerNameKey])
	if IsMissing(insurer) {
		return nil, fmt.Errorf("%w: %s", ErrMissingMetadata, cascoInsurerNameKey)
	}

	coverage := &models.CascoCoverage{InsurerName: insurer}
	if filename := Unwrap(raw[cascoPDFFilenameKey]); !IsMissing(filename) {
		coverage.PDFFilename = &filename
	}

	for label, value := range raw {
		if label == cascoInsurerNameKey || label == cascoPDFFilenameKey {
			continue
		}
		code, ok := n.aliasToCode[normalizeLabel(label)]
		if !ok {
			continue
		}
		n.assign(coverage, code, value)
	}

	return coverage, nil
}

// assign coerces one raw value per the row's declared type and sets it on the
// typed record. Values that cannot be read as the declared type are dropped,
// leaving the attribute absent.
func (n *CascoNormalizer) assign(c *models.CascoCoverage, code string, value any) {
	switch n.rowTypes[code] {
	case models.RowBool:
		b, ok := coerceBool(value)
		if !ok {
			return
		}
		setCascoBool(c, code, b)
	case models.RowNumber:
		f, ok := coerceNumber(value)
		if !ok {
			return
		}
		setCascoNumber(c, code, f)
	case models.RowList:
		items := coerceList(value)
		if items == nil {
			return
		}
		setCascoList(c, code, items)
	default:
		s := Unwrap(value)
		if IsMissing(s) {
			return
		}
		setCascoText(c, code, s)
	}
}

func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "jā", "ja", "ir", "iekļauts", "true", "yes", Included:
			return true, true
		case "nē", "ne", "nav", "false", "no":
			return false, true
		}
	case float64:
		return t != 0, true
	}
	return false, false
}

func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, "EUR", ""))
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceList(v any) []string {
	switch t := v.(type) {
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s := Unwrap(item); !IsMissing(s) {
				items = append(items, s)
			}
		}
		return items
	case string:
		if IsMissing(strings.TrimSpace(t)) {
			return nil
		}
		parts := strings.Split(t, ";")
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			if s := strings.TrimSpace(part); s != "" {
				items = append(items, s)
			}
		}
		return items
	}
	return nil
}

// setCasco* write through the typed record, one setter table per value kind.

var cascoBoolSetters = map[string]func(*models.CascoCoverage, *bool){
	models.CascoTheft:                func(c *models.CascoCoverage, v *bool) { c.Theft = v },
	models.CascoNewValue:             func(c *models.CascoCoverage, v *bool) { c.NewValue = v },
	models.CascoRoadsideAssistance:   func(c *models.CascoCoverage, v *bool) { c.RoadsideAssistance = v },
	models.CascoTireCoverage:         func(c *models.CascoCoverage, v *bool) { c.TireCoverage = v },
	models.CascoLuggageCoverage:      func(c *models.CascoCoverage, v *bool) { c.LuggageCoverage = v },
	models.CascoHydroDamage:          func(c *models.CascoCoverage, v *bool) { c.HydroDamage = v },
	models.CascoVandalism:            func(c *models.CascoCoverage, v *bool) { c.Vandalism = v },
	models.CascoNaturalDisasters:     func(c *models.CascoCoverage, v *bool) { c.NaturalDisasters = v },
	models.CascoCollisionWithAnimals: func(c *models.CascoCoverage, v *bool) { c.CollisionWithAnimals = v },
	models.CascoKeyReplacement:       func(c *models.CascoCoverage, v *bool) { c.KeyReplacement = v },
}

var cascoNumberSetters = map[string]func(*models.CascoCoverage, *float64){
	models.CascoInsuredSum: func(c *models.CascoCoverage, v *float64) { c.InsuredSumEUR = v },
	models.CascoPremium:    func(c *models.CascoCoverage, v *float64) { c.PremiumEUR = v },
	models.CascoDeductible: func(c *models.CascoCoverage, v *float64) { c.DeductibleEUR = v },
}

var cascoTextSetters = map[string]func(*models.CascoCoverage, *string){
	models.CascoTerritory:        func(c *models.CascoCoverage, v *string) { c.Territory = v },
	models.CascoTotalLoss:        func(c *models.CascoCoverage, v *string) { c.TotalLoss = v },
	models.CascoReplacementCar:   func(c *models.CascoCoverage, v *string) { c.ReplacementCar = v },
	models.CascoGlassCoverage:    func(c *models.CascoCoverage, v *string) { c.GlassCoverage = v },
	models.CascoPaymentSchedule:  func(c *models.CascoCoverage, v *string) { c.PaymentSchedule = v },
	models.CascoRepairShopChoice: func(c *models.CascoCoverage, v *string) { c.RepairShopChoice = v },
}

func setCascoBool(c *models.CascoCoverage, code string, v bool) {
	if set, ok := cascoBoolSetters[code]; ok {
		set(c, &v)
	}
}

func setCascoNumber(c *models.CascoCoverage, code string, v float64) {
	if set, ok := cascoNumberSetters[code]; ok {
		set(c, &v)
	}
}

func setCascoText(c *models.CascoCoverage, code string, v string) {
	if set, ok := cascoTextSetters[code]; ok {
		set(c, &v)
	}
}

func setCascoList(c *models.CascoCoverage, code string, v []string) {
	if code == models.CascoAdditionalEquipment {
		c.AdditionalEquipment = v
	}
}
