// Package compare turns normalized per-insurer records into the side-by-side
// comparison shapes the UI renders: the rows × insurers value matrix and the
// document-level health offer groups.
package compare

import "offer-service/internal/models"

// ColumnRecord is one comparison column: an insurer's normalized record with
// attribute lookup by row code. Lookup reports false when the attribute is
// genuinely absent from the record.
type ColumnRecord interface {
	ColumnName() string
	Attribute(code string) (any, bool)
}

// BuildMatrix produces the comparison grid for one job. It is a pure lookup:
// no coercion, no derived cells — every transformation already happened
// during normalization.
//
// Columns keep the input order and are not deduplicated; callers own passing
// one record per insurer. Two records sharing an insurer name collide in the
// value map with last-write-wins.
func BuildMatrix(rows []models.ComparisonRow, records []ColumnRecord) models.ComparisonMatrix {
	columns := make([]string, 0, len(records))
	for _, rec := range records {
		columns = append(columns, rec.ColumnName())
	}

	values := make(map[models.CellKey]any, len(rows)*len(records))
	for _, row := range rows {
		for _, rec := range records {
			key := models.CellKey{Code: row.Code, Insurer: rec.ColumnName()}
			if v, ok := rec.Attribute(row.Code); ok {
				values[key] = v
			} else {
				values[key] = nil
			}
		}
	}

	return models.ComparisonMatrix{
		Rows:    rows,
		Columns: columns,
		Values:  values,
	}
}

// HealthColumn adapts one grouped health offer to the column contract. The
// attributes are the base program's catalog features; a document that kept no
// program has no attributes at all.
type HealthColumn struct {
	Group models.OfferGroup
}

func (h HealthColumn) ColumnName() string {
	return h.Group.Insurer
}

func (h HealthColumn) Attribute(code string) (any, bool) {
	if len(h.Group.Programs) == 0 {
		return nil, false
	}
	v, ok := h.Group.Programs[0].Features[code]
	if !ok {
		return nil, false
	}
	return v, true
}
