package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// HEALTH OFFER (RAW EXTRACTION OUTPUT)
// ============================================================================

// RawHealthOffer is the payload the AI extraction step returns for one uploaded
// health-offer PDF. Field shapes are deliberately loose: the extractor may
// return numbers as strings, wrap scalars in {"value": ...} objects or drop
// keys entirely, so everything funnels through the normalize package before
// anything downstream touches it.
type RawHealthOffer struct {
	DocumentID   any          `json:"document_id"`
	InsurerCode  any          `json:"insurer_code"`
	Insurer      any          `json:"insurer"`
	Company      any          `json:"company"`
	InsuredCount any          `json:"insured_count"`
	InquiryID    any          `json:"inquiry_id"`
	Warnings     []any        `json:"warnings"`
	Programs     []RawProgram `json:"programs"`
}

// RawProgram is one insurance program as extracted, feature map untouched.
type RawProgram struct {
	ProgramCode any            `json:"program_code"`
	BaseSumEUR  any            `json:"base_sum_eur"`
	PremiumEUR  any            `json:"premium_eur"`
	Features    map[string]any `json:"features"`
}

// ============================================================================
// HEALTH OFFER (NORMALIZED)
// ============================================================================

// MaybeInt is an integer that may be absent. Absent values marshal as the
// missing sentinel "-" so the comparison UI renders them uniformly.
type MaybeInt struct {
	Val   int64
	Known bool
}

func KnownInt(v int64) MaybeInt {
	return MaybeInt{Val: v, Known: true}
}

func (m MaybeInt) String() string {
	if !m.Known {
		return "-"
	}
	return strconv.FormatInt(m.Val, 10)
}

func (m MaybeInt) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return json.Marshal("-")
	}
	return json.Marshal(m.Val)
}

func (m *MaybeInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*m = MaybeInt{Val: int64(t), Known: true}
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			*m = MaybeInt{Val: n, Known: true}
		} else {
			*m = MaybeInt{}
		}
	default:
		*m = MaybeInt{}
	}
	return nil
}

// Value stores an absent MaybeInt as SQL NULL.
func (m MaybeInt) Value() (driver.Value, error) {
	if !m.Known {
		return nil, nil
	}
	return m.Val, nil
}

func (m *MaybeInt) Scan(value any) error {
	if value == nil {
		*m = MaybeInt{}
		return nil
	}
	switch t := value.(type) {
	case int64:
		*m = MaybeInt{Val: t, Known: true}
	case []byte:
		n, err := strconv.ParseInt(string(t), 10, 64)
		if err != nil {
			return fmt.Errorf("MaybeInt: Scan failed to parse %q", t)
		}
		*m = MaybeInt{Val: n, Known: true}
	default:
		return fmt.Errorf("MaybeInt: Scan failed, expected int64 but got %T", value)
	}
	return nil
}

// NormalizedProgram is one program projected onto the full feature catalog.
// Features always carries every catalog key; sparse input degrades individual
// values to "-", never drops keys.
type NormalizedProgram struct {
	ProgramCode string            `json:"program_code"`
	BaseSumEUR  MaybeInt          `json:"base_sum_eur"`
	PremiumEUR  string            `json:"premium_eur"`
	Features    map[string]string `json:"features"`
}

// NormalizedOfferDocument is the document-level result of health
// normalization. After add-on folding Programs holds exactly one entry (or
// none when the extractor recovered nothing).
type NormalizedOfferDocument struct {
	DocumentID   string              `json:"document_id"`
	InsurerCode  string              `json:"insurer_code"`
	Insurer      string              `json:"insurer"`
	Company      string              `json:"company"`
	InsuredCount MaybeInt            `json:"insured_count"`
	InquiryID    string              `json:"inquiry_id"`
	Programs     []NormalizedProgram `json:"programs"`
	Warnings     []string            `json:"warnings"`
}

// ============================================================================
// HEALTH OFFER (PERSISTENCE)
// ============================================================================

// ProgramRow is the flat per-program row stored in Postgres. One uploaded
// document yields one row per retained program plus, on extraction failure, a
// single row carrying only the error.
type ProgramRow struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	JobID        uuid.UUID        `db:"job_id" json:"job_id"`
	DocumentID   string           `db:"document_id" json:"document_id"`
	PDFFilename  string           `db:"pdf_filename" json:"pdf_filename"`
	InsurerCode  string           `db:"insurer_code" json:"insurer_code"`
	Insurer      string           `db:"insurer" json:"insurer"`
	Company      string           `db:"company" json:"company"`
	InsuredCount MaybeInt         `db:"insured_count" json:"insured_count"`
	InquiryID    string           `db:"inquiry_id" json:"inquiry_id"`
	Status       ExtractionStatus `db:"status" json:"status"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	ProgramCode  string           `db:"program_code" json:"program_code"`
	BaseSumEUR   MaybeInt         `db:"base_sum_eur" json:"base_sum_eur"`
	PremiumEUR   string           `db:"premium_eur" json:"premium_eur"`
	Features     JSONMap          `db:"features" json:"features"`
	Warnings     JSONMap          `db:"warnings" json:"warnings,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// OfferGroup is the document-level shape the comparison UI expects, rebuilt
// from flat ProgramRow records by compare.GroupProgramRows.
type OfferGroup struct {
	DocumentID   string              `json:"document_id"`
	JobID        uuid.UUID           `json:"job_id"`
	PDFFilename  string              `json:"pdf_filename"`
	InsurerCode  string              `json:"insurer_code"`
	Insurer      string              `json:"insurer"`
	Company      string              `json:"company"`
	InsuredCount MaybeInt            `json:"insured_count"`
	InquiryID    string              `json:"inquiry_id"`
	Status       ExtractionStatus    `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Programs     []NormalizedProgram `json:"programs"`
}
