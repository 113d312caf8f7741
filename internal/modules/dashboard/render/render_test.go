package render

import (
	"testing"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/convert"
	"github.com/mvhdi/Weather-Station/internal/source"
)

func nowCatalog() catalog.Catalog {
	return catalog.Catalog{
		Source: "nowPage/current.ini",
		Fields: []catalog.FieldSpec{
			{Key: "120", Label: "Temperature", Code: convert.FtoC, Unit: "F-C"},
			{Key: "123", Label: "Humidity", Code: convert.None, Unit: "%"},
			{Key: "134", Label: "Pressure", Code: convert.InchToHPa, Unit: "inch-hPa"},
		},
	}
}

func TestRender_rowsFollowCatalog(t *testing.T) {
	row := source.Row{"1": int64(9), "120": 212.0, "123": int64(40), "134": 1.0, "999": "extra"}

	view := Render(nowCatalog(), row, "Current")

	if view.Title != "Current" {
		t.Errorf("Title = %q; want Current", view.Title)
	}
	want := []DisplayRow{
		{Label: "Temperature", Raw: "212.0 °F", Converted: "100.0 °C"},
		{Label: "Humidity", Raw: "40 %"},
		{Label: "Pressure", Raw: "1.0 inch", Converted: "3386.4 hPa"},
	}
	if len(view.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d; want %d", len(view.Rows), len(want))
	}
	for i := range want {
		if view.Rows[i] != want[i] {
			t.Errorf("Rows[%d] = %+v; want %+v", i, view.Rows[i], want[i])
		}
	}
}

func TestRender_missingValues(t *testing.T) {
	tests := []struct {
		name        string
		row         source.Row
		wantMissing []bool
	}{
		{name: "nil row", row: nil, wantMissing: []bool{true, true, true}},
		{name: "empty row", row: source.Row{}, wantMissing: []bool{true, true, true}},
		{name: "one absent", row: source.Row{"120": 50.0, "134": 30.0}, wantMissing: []bool{false, true, false}},
		{name: "null counts as missing", row: source.Row{"120": nil, "123": int64(1), "134": 30.0}, wantMissing: []bool{true, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Render(nowCatalog(), tt.row, "t")
			if len(view.Rows) != 3 {
				t.Fatalf("len(Rows) = %d; want 3", len(view.Rows))
			}
			for i, want := range tt.wantMissing {
				got := view.Rows[i]
				if got.Missing != want {
					t.Errorf("Rows[%d].Missing = %v; want %v", i, got.Missing, want)
				}
				if want && got.Raw != MissingValue {
					t.Errorf("Rows[%d].Raw = %q; want %q", i, got.Raw, MissingValue)
				}
				if got.Label != nowCatalog().Fields[i].Label {
					t.Errorf("Rows[%d].Label = %q; want %q", i, got.Label, nowCatalog().Fields[i].Label)
				}
			}
		})
	}
}

func TestRender_emptyCatalog(t *testing.T) {
	view := Render(catalog.Catalog{}, source.Row{"1": int64(1)}, "Empty")
	if len(view.Rows) != 0 {
		t.Errorf("len(Rows) = %d; want 0", len(view.Rows))
	}
}

func TestRenderFieldData(t *testing.T) {
	cat := catalog.Catalog{Fields: []catalog.FieldSpec{
		{Key: "217", Label: "Soil Temp 1", ConvertedKey: "191", ConvertedLabel: "Soil Temperature 1", Diagnostic: true},
		{Key: "218", Label: "Soil Raw Only", Diagnostic: true},
		{Label: "n/a for Soil Moisture", ConvertedKey: "193", ConvertedLabel: "Soil Moisture", Diagnostic: true},
		{Key: "219", Label: "Gone", ConvertedKey: "194", Diagnostic: true},
	}}
	raw := source.Row{"217": int64(512), "218": "0x1F"}
	conv := source.Row{"191": 21.5, "193": 0.31}

	view := RenderFieldData(cat, raw, conv, "Soil")

	if !view.Diagnostic {
		t.Error("Diagnostic = false; want true")
	}
	want := []DisplayRow{
		{Label: "Soil Temp 1", ConvertedLabel: "Soil Temperature 1", Raw: "512", Converted: "21.5", RawField: "217", ConvertedField: "191"},
		{Label: "Soil Raw Only", Raw: "0x1F", Converted: MissingValue, RawField: "218"},
		{Label: "n/a for Soil Moisture", ConvertedLabel: "Soil Moisture", Raw: MissingValue, Converted: "0.31", ConvertedField: "193"},
		{Label: "Gone", Raw: MissingValue, Converted: MissingValue, RawField: "219", ConvertedField: "194", Missing: true},
	}
	if len(view.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d; want %d", len(view.Rows), len(want))
	}
	for i := range want {
		if view.Rows[i] != want[i] {
			t.Errorf("Rows[%d] = %+v; want %+v", i, view.Rows[i], want[i])
		}
	}
}
