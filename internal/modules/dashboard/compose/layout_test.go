package compose

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLayout = `
pages:
  - id: now
    title: Weather Now
    icon: far fa-clock
    timestamp: {}
    panels:
      - title: Current
        tables:
          - {catalog: nowPage/tempTable.ini, table: converteddata, title: Temperature}
    trends:
      - {id: temp, title: Temperature, catalog: nowPage/tempTable.ini, table: converteddata}
  - id: control
    title: Control
    row_limit: 3
    tabs:
      - id: control
        title: Control
        panels:
          - title: Fan
            tables:
              - {catalog: ControlPage/tabControl/fanTable.ini, table: converteddata, title: Data}
            controls: [Fan On, Fan Off]
      - id: power
        title: Power
        panels:
          - title: Solar
            tables:
              - {catalog: ControlPage/tabPower/solarTable.ini, table: converteddata, title: Data}
`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if len(l.Pages) != 2 {
		t.Fatalf("len(Pages) = %d; want 2", len(l.Pages))
	}

	now, ok := l.Page("now")
	if !ok {
		t.Fatal("Page(now) not found")
	}
	if now.RowLimit != 1 {
		t.Errorf("now.RowLimit = %d; want default 1", now.RowLimit)
	}
	if len(now.Tabs) != 1 || now.Tabs[0].ID != implicitTabID || now.Tabs[0].Title != "Weather Now" {
		t.Errorf("now.Tabs = %+v; want one implicit tab", now.Tabs)
	}
	if now.Panels != nil {
		t.Errorf("now.Panels = %+v; want folded into the implicit tab", now.Panels)
	}
	ts := now.Timestamp
	if ts == nil || ts.Year != "2" || ts.Month != "3" || ts.Day != "4" || ts.Hour != "5" || ts.Minute != "6" || ts.Second != "7" {
		t.Errorf("Timestamp = %+v; want default columns 2..7", ts)
	}
	tr, ok := now.Trend("temp")
	if !ok || tr.Rows != defaultTrendRows {
		t.Errorf("Trend(temp) = %+v, %v; want default rows %d", tr, ok, defaultTrendRows)
	}

	control, _ := l.Page("control")
	if control.RowLimit != 3 || len(control.Tabs) != 2 {
		t.Errorf("control = %+v; want row_limit 3 and 2 tabs", control)
	}
	if got := control.Sections(); len(got) != 2 || got[1].Catalog != "ControlPage/tabPower/solarTable.ini" {
		t.Errorf("Sections() = %+v", got)
	}
	if _, ok := l.Page("missing"); ok {
		t.Error("Page(missing) found")
	}
}

func TestParseLayout_invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{name: "no pages", yaml: "pages: []", want: []string{"no pages"}},
		{name: "unknown field", yaml: "pages:\n  - id: a\n    colour: red\n", want: []string{"colour"}},
		{
			name: "duplicate page ids",
			yaml: "pages:\n  - id: a\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n  - id: a\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n",
			want: []string{`page "a": duplicate id`},
		},
		{
			name: "bad id",
			yaml: "pages:\n  - id: a/b\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n",
			want: []string{`page "a/b": id must be`},
		},
		{
			name: "missing catalog and bad table",
			yaml: "pages:\n  - id: a\n    panels: [{tables: [{table: \"t; drop\"}]}]\n",
			want: []string{"missing catalog", "invalid table name"},
		},
		{
			name: "no tabs",
			yaml: "pages:\n  - id: a\n    title: A\n",
			want: []string{"no tabs or panels"},
		},
		{
			name: "tabs and panels",
			yaml: "pages:\n  - id: a\n    tabs: [{id: x, panels: [{tables: [{catalog: c.ini, table: t}]}]}]\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n",
			want: []string{"either tabs or panels"},
		},
		{
			name: "negative row limit",
			yaml: "pages:\n  - id: a\n    row_limit: -1\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n",
			want: []string{"row_limit"},
		},
		{
			name: "bad trend",
			yaml: "pages:\n  - id: a\n    panels: [{tables: [{catalog: c.ini, table: t}]}]\n    trends: [{id: x, table: t}, {id: x, catalog: c.ini, table: t}]\n",
			want: []string{`trend "x": missing catalog`, `trend "x": duplicate id`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParseLayout = nil error; want error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("err = %q; want it to contain %q", err.Error(), w)
				}
			}
		})
	}
}

func TestLoadLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages.yaml")
	if err := os.WriteFile(path, []byte(sampleLayout), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if len(l.Pages) != 2 {
		t.Errorf("len(Pages) = %d; want 2", len(l.Pages))
	}

	if _, err := LoadLayout(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadLayout(missing) = nil error; want error")
	}
}
