package normalize

import (
	"strings"

	"offer-service/internal/models"
)

// HealthNormalizer converts one raw extracted health offer into exactly one
// normalized document with a single base program. All catalogs and business
// rules come in through HealthConfig; the methods here only apply them.
type HealthNormalizer struct {
	cfg HealthConfig
}

func NewHealthNormalizer(cfg HealthConfig) *HealthNormalizer {
	return &HealthNormalizer{cfg: cfg}
}

// NormalizeOffer runs the full pipeline: per-program projection, business
// rules, add-on folding, defaulting, document assembly. It never fails a
// document; bad values degrade field by field.
func (n *HealthNormalizer) NormalizeOffer(raw models.RawHealthOffer) models.NormalizedOfferDocument {
	programs := make([]models.NormalizedProgram, 0, len(raw.Programs))
	for _, rp := range raw.Programs {
		programs = append(programs, n.normalizeProgram(rp))
	}

	insurerCode := CoerceFeatureValue(raw.InsurerCode)

	if len(programs) > 0 {
		base := n.fold(programs)
		n.applyDefaults(&base, insurerCode)
		programs = []models.NormalizedProgram{base}
	}

	warnings := make([]string, 0, len(raw.Warnings))
	for _, w := range raw.Warnings {
		if s := Unwrap(w); !IsMissing(s) {
			warnings = append(warnings, s)
		}
	}

	return models.NormalizedOfferDocument{
		DocumentID:   CoerceFeatureValue(raw.DocumentID),
		InsurerCode:  insurerCode,
		Insurer:      CoerceFeatureValue(raw.Insurer),
		Company:      CoerceFeatureValue(raw.Company),
		InsuredCount: CoerceBaseSum(raw.InsuredCount),
		InquiryID:    CoerceFeatureValue(raw.InquiryID),
		Programs:     programs,
		Warnings:     warnings,
	}
}

// normalizeProgram projects one raw program onto the full catalog and applies
// the unconditional business rules.
func (n *HealthNormalizer) normalizeProgram(rp models.RawProgram) models.NormalizedProgram {
	features := migrateLegacyKeys(rp.Features, n.cfg.LegacyKeys)

	out := make(map[string]string, len(n.cfg.Catalog))
	for _, key := range n.cfg.Catalog {
		if raw, ok := features[key]; ok {
			out[key] = CoerceFeatureValue(raw)
		} else {
			out[key] = Missing
		}
	}

	// Payment method is business policy, not document content: always the
	// fixed label no matter what was extracted.
	out[FeatPaymentMethod] = n.cfg.PaymentMethodLabel
	// Maternity care carries only an included-or-not signal.
	out[FeatMaternity] = PresenceToMark(out[FeatMaternity])

	code := CoerceFeatureValue(rp.ProgramCode)
	if IsMissing(code) {
		code = out[FeatProgramCode]
	}
	if IsMissing(code) {
		code = out[FeatProgramName]
	}
	if IsMissing(code) {
		code = Missing
	}

	// Scalar wins over feature; the loser is patched from the winner. One
	// fixed direction per field so the backfill cannot oscillate.
	baseSum := CoerceBaseSum(rp.BaseSumEUR)
	if !baseSum.Known {
		baseSum = CoerceBaseSum(out[FeatBaseSum])
	}
	if baseSum.Known && IsMissing(out[FeatBaseSum]) {
		out[FeatBaseSum] = baseSum.String()
	}

	premium := CoercePremium(rp.PremiumEUR)
	if IsMissing(premium) {
		premium = CoercePremium(out[FeatPremium])
	}
	if !IsMissing(premium) && IsMissing(out[FeatPremium]) {
		out[FeatPremium] = premium
	}

	return models.NormalizedProgram{
		ProgramCode: code,
		BaseSumEUR:  baseSum,
		PremiumEUR:  premium,
		Features:    out,
	}
}

// migrateLegacyKeys copies values from old misspelled keys to their corrected
// spelling, without ever overwriting a corrected key that is already present.
func migrateLegacyKeys(features map[string]any, legacy map[string]string) map[string]any {
	out := make(map[string]any, len(features))
	for k, v := range features {
		out[k] = v
	}
	for oldKey, newKey := range legacy {
		v, hasOld := out[oldKey]
		if !hasOld {
			continue
		}
		if _, hasNew := out[newKey]; !hasNew {
			out[newKey] = v
		}
	}
	return out
}

// fold reduces the program list to the single base program, absorbing add-on
// program signals into its feature map. Precedence is explicit-wins: a value
// the base program already has is never overwritten by a folded one.
func (n *HealthNormalizer) fold(programs []models.NormalizedProgram) models.NormalizedProgram {
	baseIdx := 0
	for i, p := range programs {
		if !n.isAddOn(p) {
			baseIdx = i
			break
		}
	}
	// When every program matches the add-on pattern the loop falls back to
	// index 0. That fallback is relied on by callers; do not "fix" it here.

	base := programs[baseIdx]
	for i, p := range programs {
		if i == baseIdx {
			continue
		}
		n.foldInto(&base, p)
	}
	return base
}

func (n *HealthNormalizer) isAddOn(p models.NormalizedProgram) bool {
	name := strings.ToLower(p.ProgramCode)
	for _, marker := range n.cfg.AddOnMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	// Classification looks at the stems alone; SubStem only narrows which
	// folding rule applies, not whether a program counts as an add-on.
	for _, rule := range n.cfg.AddOnRules {
		for _, stem := range rule.Stems {
			if strings.Contains(name, stem) {
				return true
			}
		}
	}
	return false
}

func ruleMatches(rule AddOnRule, loweredName string) bool {
	matched := false
	for _, stem := range rule.Stems {
		if strings.Contains(loweredName, stem) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if rule.SubStem != "" && !strings.Contains(loweredName, rule.SubStem) {
		return false
	}
	return true
}

// foldInto extracts the signal one add-on program carries and copies it into
// the base program's feature map. The first matching rule claims the add-on.
func (n *HealthNormalizer) foldInto(base *models.NormalizedProgram, addon models.NormalizedProgram) {
	name := strings.ToLower(addon.ProgramCode)

	for _, rule := range n.cfg.AddOnRules {
		if !ruleMatches(rule, name) {
			continue
		}

		value := n.foldedValue(rule, addon)
		if !IsMissing(value) && IsMissing(base.Features[rule.Target]) {
			base.Features[rule.Target] = value
		}
		return
	}
}

// foldedValue derives the value a rule copies: the Included marker for
// presence rules, an explicit add-on feature when the rule names one, else the
// formatted EUR sum. Unparseable sums stay Missing and are not copied.
func (n *HealthNormalizer) foldedValue(rule AddOnRule, addon models.NormalizedProgram) string {
	explicit := Missing
	if rule.Source != "" {
		explicit = addon.Features[rule.Source]
	}

	if rule.Presence {
		if !IsMissing(explicit) || (addon.BaseSumEUR.Known && addon.BaseSumEUR.Val != 0) {
			return Included
		}
		return Missing
	}

	if !IsMissing(explicit) {
		return explicit
	}
	return n.formattedSum(addon)
}

// formattedSum prefers the coerced scalar sum and falls back to the catalog
// sum feature, which may still carry a fractional value.
func (n *HealthNormalizer) formattedSum(addon models.NormalizedProgram) string {
	if addon.BaseSumEUR.Known {
		return FormatEURSum(addon.BaseSumEUR.String())
	}
	return FormatEURSum(addon.Features[FeatBaseSum])
}

// applyDefaults runs the post-folding rules on the surviving base program.
func (n *HealthNormalizer) applyDefaults(base *models.NormalizedProgram, insurerCode string) {
	// Unspecified co-payment means full patient responsibility.
	if IsMissing(base.Features[FeatCoPayment]) {
		base.Features[FeatCoPayment] = n.cfg.CoPaymentDefault
	}

	for _, o := range n.cfg.VendorOverrides {
		if !strings.Contains(insurerCode, o.InsurerCodeContains) {
			continue
		}
		if !strings.Contains(base.ProgramCode, o.ProgramCodeContains) {
			continue
		}
		if IsMissing(base.Features[o.Feature]) {
			base.Features[o.Feature] = o.Value
		}
	}
}
