package compose

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/mvhdi/Weather-Station/internal/source"
)

const (
	defaultRowLimit  = 1
	defaultTrendRows = 24
	implicitTabID    = "main"
	maxRowLimit      = 1000
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Layout is the declarative description of every dashboard page.
type Layout struct {
	Pages []Page `yaml:"pages" json:"pages"`
}

// Page is one navigation entry.
type Page struct {
	ID        string      `yaml:"id" json:"id"`
	Title     string      `yaml:"title" json:"title"`
	Icon      string      `yaml:"icon" json:"icon,omitempty"`
	RowLimit  int         `yaml:"row_limit" json:"rowLimit"`
	Timestamp *Timestamp  `yaml:"timestamp" json:"timestamp,omitempty"`
	Tabs      []Tab       `yaml:"tabs" json:"tabs"`
	Trends    []TrendSpec `yaml:"trends" json:"trends,omitempty"`

	// Panels is shorthand for a page with a single tab.
	Panels []Panel `yaml:"panels" json:"-"`
}

type Tab struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Panels []Panel `yaml:"panels" json:"panels"`
}

// Panel is a collapsible group of tables and control buttons.
type Panel struct {
	Title    string        `yaml:"title" json:"title"`
	Tables   []SectionSpec `yaml:"tables" json:"tables"`
	Controls []string      `yaml:"controls" json:"controls,omitempty"`
}

// SectionSpec pairs a catalog with the table its fields are read from.
// ConvertedTable is set for diagnostic catalogs whose converted columns live
// in a second table.
type SectionSpec struct {
	Catalog        string `yaml:"catalog" json:"catalog"`
	Table          string `yaml:"table" json:"table"`
	ConvertedTable string `yaml:"converted_table" json:"convertedTable,omitempty"`
	Title          string `yaml:"title" json:"title"`
}

// Timestamp names the columns holding the time a row was recorded.
type Timestamp struct {
	Table  string `yaml:"table" json:"table,omitempty"`
	Year   string `yaml:"year" json:"year"`
	Month  string `yaml:"month" json:"month"`
	Day    string `yaml:"day" json:"day"`
	Hour   string `yaml:"hour" json:"hour"`
	Minute string `yaml:"minute" json:"minute"`
	Second string `yaml:"second" json:"second"`
}

// TrendSpec is a chart of a catalog's fields over the most recent rows.
type TrendSpec struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Catalog string `yaml:"catalog" json:"catalog"`
	Table   string `yaml:"table" json:"table"`
	Rows    int    `yaml:"rows" json:"rows"`
}

// LoadLayout reads and validates the layout file at path.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes layout YAML, fills defaults and validates it. Every
// problem found is reported, joined.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	l.normalize()
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Page returns the page with the given id.
func (l *Layout) Page(id string) (*Page, bool) {
	for i := range l.Pages {
		if l.Pages[i].ID == id {
			return &l.Pages[i], true
		}
	}
	return nil, false
}

// Trend returns the page's trend with the given id.
func (p *Page) Trend(id string) (*TrendSpec, bool) {
	for i := range p.Trends {
		if p.Trends[i].ID == id {
			return &p.Trends[i], true
		}
	}
	return nil, false
}

// Sections lists every table of the page in display order.
func (p *Page) Sections() []SectionSpec {
	var out []SectionSpec
	for _, tab := range p.Tabs {
		for _, panel := range tab.Panels {
			out = append(out, panel.Tables...)
		}
	}
	return out
}

func (l *Layout) normalize() {
	for i := range l.Pages {
		p := &l.Pages[i]
		if p.RowLimit == 0 {
			p.RowLimit = defaultRowLimit
		}
		if len(p.Tabs) == 0 && len(p.Panels) > 0 {
			p.Tabs = []Tab{{ID: implicitTabID, Title: p.Title, Panels: p.Panels}}
			p.Panels = nil
		}
		if p.Timestamp != nil {
			p.Timestamp.fillDefaults()
		}
		for j := range p.Trends {
			if p.Trends[j].Rows == 0 {
				p.Trends[j].Rows = defaultTrendRows
			}
		}
	}
}

func (ts *Timestamp) fillDefaults() {
	for _, f := range []struct {
		field *string
		def   string
	}{
		{&ts.Year, "2"}, {&ts.Month, "3"}, {&ts.Day, "4"},
		{&ts.Hour, "5"}, {&ts.Minute, "6"}, {&ts.Second, "7"},
	} {
		if *f.field == "" {
			*f.field = f.def
		}
	}
}

func (l *Layout) validate() error {
	if len(l.Pages) == 0 {
		return errors.New("no pages defined")
	}
	var errs []error
	seen := make(map[string]bool)
	for i, p := range l.Pages {
		name := fmt.Sprintf("page %d", i+1)
		if p.ID != "" {
			name = fmt.Sprintf("page %q", p.ID)
		}
		fail := func(format string, args ...any) {
			errs = append(errs, fmt.Errorf("%s: %s", name, fmt.Sprintf(format, args...)))
		}

		switch {
		case p.ID == "":
			fail("missing id")
		case !idRe.MatchString(p.ID):
			fail("id must be letters, digits, '-' or '_'")
		case seen[p.ID]:
			fail("duplicate id")
		}
		seen[p.ID] = true

		if p.RowLimit < 1 || p.RowLimit > maxRowLimit {
			fail("row_limit must be between 1 and %d, got %d", maxRowLimit, p.RowLimit)
		}
		if len(p.Tabs) == 0 {
			fail("no tabs or panels")
		}
		if len(p.Panels) > 0 {
			fail("use either tabs or panels, not both")
		}
		if p.Timestamp != nil && p.Timestamp.Table != "" && !source.ValidTableName(p.Timestamp.Table) {
			fail("timestamp: invalid table name %q", p.Timestamp.Table)
		}

		tabs := make(map[string]bool)
		for ti, tab := range p.Tabs {
			switch {
			case !idRe.MatchString(tab.ID):
				fail("tab %d: invalid id %q", ti+1, tab.ID)
			case tabs[tab.ID]:
				fail("tab %q: duplicate id", tab.ID)
			}
			tabs[tab.ID] = true
			for pi, panel := range tab.Panels {
				if len(panel.Tables) == 0 && len(panel.Controls) == 0 {
					fail("tab %q: panel %d: no tables or controls", tab.ID, pi+1)
				}
				for si, s := range panel.Tables {
					where := fmt.Sprintf("tab %q: panel %d: table %d", tab.ID, pi+1, si+1)
					if s.Catalog == "" {
						fail("%s: missing catalog", where)
					}
					if !source.ValidTableName(s.Table) {
						fail("%s: invalid table name %q", where, s.Table)
					}
					if s.ConvertedTable != "" && !source.ValidTableName(s.ConvertedTable) {
						fail("%s: invalid converted_table name %q", where, s.ConvertedTable)
					}
				}
			}
		}

		trends := make(map[string]bool)
		for ti, tr := range p.Trends {
			switch {
			case !idRe.MatchString(tr.ID):
				fail("trend %d: invalid id %q", ti+1, tr.ID)
			case trends[tr.ID]:
				fail("trend %q: duplicate id", tr.ID)
			}
			trends[tr.ID] = true
			if tr.Catalog == "" {
				fail("trend %q: missing catalog", tr.ID)
			}
			if !source.ValidTableName(tr.Table) {
				fail("trend %q: invalid table name %q", tr.ID, tr.Table)
			}
			if tr.Rows < 1 || tr.Rows > maxRowLimit {
				fail("trend %q: rows must be between 1 and %d, got %d", tr.ID, maxRowLimit, tr.Rows)
			}
		}
	}
	return errors.Join(errs...)
}
