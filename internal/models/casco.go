package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// CASCO COVERAGE ATTRIBUTE CODES
// ============================================================================

// Stable attribute codes. These double as comparison-matrix row keys, so the
// set here must stay equal to the row catalog in normalize (enforced by test).
const (
	CascoInsuredSum           = "insured_sum_eur"
	CascoPremium              = "premium_eur"
	CascoDeductible           = "deductible_eur"
	CascoTerritory            = "territory"
	CascoTheft                = "theft"
	CascoTotalLoss            = "total_loss_compensation"
	CascoNewValue             = "new_value_insurance"
	CascoReplacementCar       = "replacement_car"
	CascoRoadsideAssistance   = "roadside_assistance"
	CascoGlassCoverage        = "glass_coverage"
	CascoTireCoverage         = "tire_coverage"
	CascoLuggageCoverage      = "luggage_coverage"
	CascoHydroDamage          = "hydro_damage"
	CascoVandalism            = "vandalism"
	CascoNaturalDisasters     = "natural_disasters"
	CascoCollisionWithAnimals = "collision_with_animals"
	CascoKeyReplacement       = "key_replacement"
	CascoAdditionalEquipment  = "additional_equipment"
	CascoPaymentSchedule      = "payment_schedule"
	CascoRepairShopChoice     = "repair_shop_choice"
)

// ============================================================================
// CASCO COVERAGE RECORD
// ============================================================================

// CascoCoverage is one insurer's normalized CASCO coverage for a job. Nil
// pointer fields mean the attribute was genuinely absent from the source offer
// and must surface as null in the comparison matrix, never as a guessed value.
type CascoCoverage struct {
	InsurerName string  `json:"insurer_name"`
	PDFFilename *string `json:"pdf_filename,omitempty"`

	InsuredSumEUR         *float64 `json:"insured_sum_eur,omitempty"`
	PremiumEUR            *float64 `json:"premium_eur,omitempty"`
	DeductibleEUR         *float64 `json:"deductible_eur,omitempty"`
	Territory             *string  `json:"territory,omitempty"`
	Theft                 *bool    `json:"theft,omitempty"`
	TotalLoss             *string  `json:"total_loss_compensation,omitempty"`
	NewValue              *bool    `json:"new_value_insurance,omitempty"`
	ReplacementCar        *string  `json:"replacement_car,omitempty"`
	RoadsideAssistance    *bool    `json:"roadside_assistance,omitempty"`
	GlassCoverage         *string  `json:"glass_coverage,omitempty"`
	TireCoverage          *bool    `json:"tire_coverage,omitempty"`
	LuggageCoverage       *bool    `json:"luggage_coverage,omitempty"`
	HydroDamage           *bool    `json:"hydro_damage,omitempty"`
	Vandalism             *bool    `json:"vandalism,omitempty"`
	NaturalDisasters      *bool    `json:"natural_disasters,omitempty"`
	CollisionWithAnimals  *bool    `json:"collision_with_animals,omitempty"`
	KeyReplacement        *bool    `json:"key_replacement,omitempty"`
	AdditionalEquipment   []string `json:"additional_equipment,omitempty"`
	PaymentSchedule       *string  `json:"payment_schedule,omitempty"`
	RepairShopChoice      *string  `json:"repair_shop_choice,omitempty"`
}

// cascoAccessors maps attribute code to a lookup on the typed record, built
// once at init instead of reflecting on struct fields per request. The second
// return reports whether the attribute carries a value.
var cascoAccessors = map[string]func(*CascoCoverage) (any, bool){
	CascoInsuredSum:           func(c *CascoCoverage) (any, bool) { return deref(c.InsuredSumEUR) },
	CascoPremium:              func(c *CascoCoverage) (any, bool) { return deref(c.PremiumEUR) },
	CascoDeductible:           func(c *CascoCoverage) (any, bool) { return deref(c.DeductibleEUR) },
	CascoTerritory:            func(c *CascoCoverage) (any, bool) { return deref(c.Territory) },
	CascoTheft:                func(c *CascoCoverage) (any, bool) { return deref(c.Theft) },
	CascoTotalLoss:            func(c *CascoCoverage) (any, bool) { return deref(c.TotalLoss) },
	CascoNewValue:             func(c *CascoCoverage) (any, bool) { return deref(c.NewValue) },
	CascoReplacementCar:       func(c *CascoCoverage) (any, bool) { return deref(c.ReplacementCar) },
	CascoRoadsideAssistance:   func(c *CascoCoverage) (any, bool) { return deref(c.RoadsideAssistance) },
	CascoGlassCoverage:        func(c *CascoCoverage) (any, bool) { return deref(c.GlassCoverage) },
	CascoTireCoverage:         func(c *CascoCoverage) (any, bool) { return deref(c.TireCoverage) },
	CascoLuggageCoverage:      func(c *CascoCoverage) (any, bool) { return deref(c.LuggageCoverage) },
	CascoHydroDamage:          func(c *CascoCoverage) (any, bool) { return deref(c.HydroDamage) },
	CascoVandalism:            func(c *CascoCoverage) (any, bool) { return deref(c.Vandalism) },
	CascoNaturalDisasters:     func(c *CascoCoverage) (any, bool) { return deref(c.NaturalDisasters) },
	CascoCollisionWithAnimals: func(c *CascoCoverage) (any, bool) { return deref(c.CollisionWithAnimals) },
	CascoKeyReplacement:       func(c *CascoCoverage) (any, bool) { return deref(c.KeyReplacement) },
	CascoAdditionalEquipment: func(c *CascoCoverage) (any, bool) {
		if c.AdditionalEquipment == nil {
			return nil, false
		}
		return c.AdditionalEquipment, true
	},
	CascoPaymentSchedule:  func(c *CascoCoverage) (any, bool) { return deref(c.PaymentSchedule) },
	CascoRepairShopChoice: func(c *CascoCoverage) (any, bool) { return deref(c.RepairShopChoice) },
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Attribute looks up one coverage attribute by its stable code. Unknown codes
// and unset attributes both report false.
func (c *CascoCoverage) Attribute(code string) (any, bool) {
	accessor, ok := cascoAccessors[code]
	if !ok {
		return nil, false
	}
	return accessor(c)
}

// ColumnName implements the comparison column contract.
func (c *CascoCoverage) ColumnName() string {
	return c.InsurerName
}

// CascoAttributeCodes returns every attribute code the record supports, in no
// particular order.
func CascoAttributeCodes() []string {
	codes := make([]string, 0, len(cascoAccessors))
	for code := range cascoAccessors {
		codes = append(codes, code)
	}
	return codes
}

// ============================================================================
// CASCO COVERAGE (PERSISTENCE)
// ============================================================================

// CascoCoverageRow stores one normalized coverage as opaque JSONB. The payload
// is the marshaled CascoCoverage; user edits merge into it key by key.
type CascoCoverageRow struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	JobID       uuid.UUID        `db:"job_id" json:"job_id"`
	InsurerName string           `db:"insurer_name" json:"insurer_name"`
	PDFFilename *string          `db:"pdf_filename" json:"pdf_filename,omitempty"`
	Status      ExtractionStatus `db:"status" json:"status"`
	Payload     JSONMap          `db:"payload" json:"payload"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
