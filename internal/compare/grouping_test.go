package compare

import (
	"testing"

	"offer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func programRow(docID, programCode string, status models.ExtractionStatus) models.ProgramRow {
	return models.ProgramRow{
		DocumentID:  docID,
		PDFFilename: docID + ".pdf",
		Insurer:     "Balta",
		Status:      status,
		ProgramCode: programCode,
		Features:    models.JSONMap{"Sports": "v"},
	}
}

func TestGroupProgramRows_GroupsByDocument(t *testing.T) {
	rows := []models.ProgramRow{
		programRow("doc-1", "Pamatprogramma", models.ExtractionParsed),
		programRow("doc-2", "V2+", models.ExtractionParsed),
		programRow("doc-1", "Papildprogramma", models.ExtractionParsed),
	}

	groups := GroupProgramRows(rows)
	require.Len(t, groups, 2)

	assert.Equal(t, "doc-1", groups[0].DocumentID, "first-seen document order")
	assert.Len(t, groups[0].Programs, 2)
	assert.Equal(t, "Pamatprogramma", groups[0].Programs[0].ProgramCode)
	assert.Equal(t, "Papildprogramma", groups[0].Programs[1].ProgramCode)
	assert.Equal(t, models.ExtractionParsed, groups[0].Status)

	assert.Equal(t, "doc-2", groups[1].DocumentID)
	assert.Len(t, groups[1].Programs, 1)
	assert.Equal(t, "v", groups[1].Programs[0].Features["Sports"])
}

func TestGroupProgramRows_MetadataFromFirstRow(t *testing.T) {
	first := programRow("doc-1", "Pamatprogramma", models.ExtractionParsed)
	first.Company = "SIA Pirmā"
	second := programRow("doc-1", "Cita", models.ExtractionParsed)
	second.Company = "SIA Otrā"

	groups := GroupProgramRows([]models.ProgramRow{first, second})
	require.Len(t, groups, 1)
	assert.Equal(t, "SIA Pirmā", groups[0].Company)
}

func TestGroupProgramRows_AllRowsErrored(t *testing.T) {
	msg1 := "gemini timeout"
	msg2 := "second failure"
	row1 := programRow("doc-1", "", models.ExtractionError)
	row1.ErrorMessage = &msg1
	row2 := programRow("doc-1", "", models.ExtractionError)
	row2.ErrorMessage = &msg2

	groups := GroupProgramRows([]models.ProgramRow{row1, row2})
	require.Len(t, groups, 1)
	assert.Equal(t, models.ExtractionError, groups[0].Status)
	assert.Equal(t, "gemini timeout", groups[0].ErrorMessage, "first error message wins")
	assert.Empty(t, groups[0].Programs)
}

func TestGroupProgramRows_PartialErrorStaysParsed(t *testing.T) {
	msg := "one page unreadable"
	errRow := programRow("doc-1", "", models.ExtractionError)
	errRow.ErrorMessage = &msg

	groups := GroupProgramRows([]models.ProgramRow{
		errRow,
		programRow("doc-1", "Pamatprogramma", models.ExtractionParsed),
	})
	require.Len(t, groups, 1)
	assert.Equal(t, models.ExtractionParsed, groups[0].Status)
	assert.Len(t, groups[0].Programs, 1)
}

func TestGroupProgramRows_NoProgramsIsDistinctFailure(t *testing.T) {
	// Extraction "succeeded" but recovered nothing: a failure class distinct
	// from infrastructure errors.
	row := programRow("doc-1", "", models.ExtractionParsed)
	row.Features = nil

	groups := GroupProgramRows([]models.ProgramRow{row})
	require.Len(t, groups, 1)
	assert.Equal(t, models.ExtractionError, groups[0].Status)
	assert.Equal(t, NoProgramsMessage, groups[0].ErrorMessage)
	assert.Empty(t, groups[0].Programs)
}

func TestGroupProgramRows_EmptyInput(t *testing.T) {
	assert.Empty(t, GroupProgramRows(nil))
}
