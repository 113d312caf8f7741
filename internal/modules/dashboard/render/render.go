// Package render maps a catalog over a fetched row to produce a display table.
package render

import (
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/convert"
	"github.com/mvhdi/Weather-Station/internal/source"
)

// MissingValue stands in for a value the row does not have.
const MissingValue = "n/a"

// DisplayRow is one line of a table.
type DisplayRow struct {
	Label          string `json:"label"`
	ConvertedLabel string `json:"convertedLabel,omitempty"`
	Raw            string `json:"raw"`
	Converted      string `json:"converted"`
	RawField       string `json:"rawField,omitempty"`
	ConvertedField string `json:"convertedField,omitempty"`
	Missing        bool   `json:"missing,omitempty"`
}

// TableView is a titled table, one row per catalog entry in catalog order.
type TableView struct {
	Title      string       `json:"title"`
	Diagnostic bool         `json:"diagnostic,omitempty"`
	Rows       []DisplayRow `json:"rows"`
}

// Render builds the table for one row. A nil row renders every entry as missing.
func Render(cat catalog.Catalog, row source.Row, title string) TableView {
	view := TableView{Title: title, Rows: make([]DisplayRow, 0, len(cat.Fields))}
	for _, f := range cat.Fields {
		dr := DisplayRow{Label: f.Label}
		raw, ok := lookup(row, f.Key)
		if !ok {
			dr.Raw = MissingValue
			dr.Missing = true
			view.Rows = append(view.Rows, dr)
			continue
		}
		d := convert.Value(f.Code, f.Unit, raw)
		dr.Raw = d.Original
		dr.Converted = d.Converted
		view.Rows = append(view.Rows, dr)
	}
	return view
}

// RenderFieldData builds a diagnostic table: each entry's raw column is read
// from rawRow and its converted column from convertedRow, both shown as
// stored next to their field numbers.
func RenderFieldData(cat catalog.Catalog, rawRow, convertedRow source.Row, title string) TableView {
	view := TableView{Title: title, Diagnostic: true, Rows: make([]DisplayRow, 0, len(cat.Fields))}
	for _, f := range cat.Fields {
		dr := DisplayRow{
			Label:          f.Label,
			ConvertedLabel: f.ConvertedLabel,
			RawField:       f.Key,
			ConvertedField: f.ConvertedKey,
		}
		var missing bool
		dr.Raw, missing = storedOrMissing(rawRow, f.Key)
		dr.Missing = dr.Missing || missing
		dr.Converted, missing = storedOrMissing(convertedRow, f.ConvertedKey)
		dr.Missing = dr.Missing || missing
		view.Rows = append(view.Rows, dr)
	}
	return view
}

// storedOrMissing formats row[key]. A blank key is not configured and shows
// the marker without counting as missing.
func storedOrMissing(row source.Row, key string) (string, bool) {
	if key == "" {
		return MissingValue, false
	}
	v, ok := lookup(row, key)
	if !ok {
		return MissingValue, true
	}
	return convert.Stored(v), false
}

// lookup treats SQL NULL like an absent column.
func lookup(row source.Row, key string) (any, bool) {
	if row == nil || key == "" {
		return nil, false
	}
	v, ok := row[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
