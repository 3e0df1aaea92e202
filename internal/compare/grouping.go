package compare

import "offer-service/internal/models"

// NoProgramsMessage flags extraction that yielded nothing for a document. It
// is a distinct failure class from infrastructure errors and must stay
// visible as such.
const NoProgramsMessage = "no programs"

// GroupProgramRows regroups flat per-program database rows into one offer
// group per source document, in first-seen document order. Document-level
// metadata comes from the first row of each document; every row's program
// fields are appended in row order.
//
// Status policy: a group is "parsed" unless every contributing row is marked
// "error" (then the first error message wins). A group that ends with zero
// programs and no explicit error is force-flagged as an error with
// NoProgramsMessage.
func GroupProgramRows(rows []models.ProgramRow) []models.OfferGroup {
	groups := make([]models.OfferGroup, 0)
	index := make(map[string]int)
	allErrored := make(map[string]bool)

	for _, row := range rows {
		i, seen := index[row.DocumentID]
		if !seen {
			i = len(groups)
			index[row.DocumentID] = i
			allErrored[row.DocumentID] = true
			groups = append(groups, models.OfferGroup{
				DocumentID:   row.DocumentID,
				JobID:        row.JobID,
				PDFFilename:  row.PDFFilename,
				InsurerCode:  row.InsurerCode,
				Insurer:      row.Insurer,
				Company:      row.Company,
				InsuredCount: row.InsuredCount,
				InquiryID:    row.InquiryID,
				Status:       models.ExtractionParsed,
				Programs:     []models.NormalizedProgram{},
			})
		}

		if row.Status == models.ExtractionError {
			if groups[i].ErrorMessage == "" && row.ErrorMessage != nil {
				groups[i].ErrorMessage = *row.ErrorMessage
			}
			continue
		}
		allErrored[row.DocumentID] = false

		// A row without program content is a placeholder: the document was
		// seen but extraction recovered nothing from it.
		if row.ProgramCode == "" && len(row.Features) == 0 {
			continue
		}

		groups[i].Programs = append(groups[i].Programs, models.NormalizedProgram{
			ProgramCode: row.ProgramCode,
			BaseSumEUR:  row.BaseSumEUR,
			PremiumEUR:  row.PremiumEUR,
			Features:    featureMap(row.Features),
		})
	}

	for i := range groups {
		switch {
		case allErrored[groups[i].DocumentID]:
			groups[i].Status = models.ExtractionError
		case len(groups[i].Programs) == 0:
			groups[i].Status = models.ExtractionError
			groups[i].ErrorMessage = NoProgramsMessage
		}
	}

	return groups
}

// featureMap narrows the stored JSONB feature payload back to the
// string-valued catalog map.
func featureMap(stored models.JSONMap) map[string]string {
	out := make(map[string]string, len(stored))
	for k, v := range stored {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
