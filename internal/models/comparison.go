package models

import "encoding/json"

// RowType declares how the UI should render a comparison row's values.
type RowType string

const (
	RowBool   RowType = "bool"
	RowNumber RowType = "number"
	RowText   RowType = "text"
	RowList   RowType = "list"
)

// ComparisonRow is one row of the comparison table. Code is the stable grid
// key and must match an attribute name on the underlying record.
type ComparisonRow struct {
	Code  string  `json:"code"`
	Label string  `json:"label"`
	Group string  `json:"group"`
	Type  RowType `json:"type"`
}

// CellKey identifies one matrix cell. The composite struct is the in-process
// key; the wire format keeps the historical "code::insurer" string form.
type CellKey struct {
	Code    string
	Insurer string
}

func (k CellKey) String() string {
	return k.Code + "::" + k.Insurer
}

// ComparisonMatrix is the rows × insurers grid. Values is logically dense:
// every (row code, column) pair has an entry, possibly nil when the insurer's
// record genuinely lacks the attribute.
type ComparisonMatrix struct {
	Rows    []ComparisonRow
	Columns []string
	Values  map[CellKey]any
}

type comparisonMatrixJSON struct {
	Rows    []ComparisonRow `json:"rows"`
	Columns []string        `json:"columns"`
	Values  map[string]any  `json:"values"`
}

func (m ComparisonMatrix) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(m.Values))
	for key, value := range m.Values {
		flat[key.String()] = value
	}
	return json.Marshal(comparisonMatrixJSON{
		Rows:    m.Rows,
		Columns: m.Columns,
		Values:  flat,
	})
}
