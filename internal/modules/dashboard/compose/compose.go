// Package compose assembles dashboard pages: it loads each section's catalog,
// fetches the rows it needs and renders the tables, tolerating per-section
// failures.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/convert"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/render"
	"github.com/mvhdi/Weather-Station/internal/source"
)

// CatalogLoader loads one catalog by its id.
type CatalogLoader interface {
	Load(sourceID string) (catalog.Catalog, error)
}

// SectionView is one table of a page, or the placeholder that replaces it.
type SectionView struct {
	Title       string            `json:"title"`
	Catalog     string            `json:"catalog"`
	Table       string            `json:"table"`
	View        *render.TableView `json:"view,omitempty"`
	Failed      bool              `json:"failed,omitempty"`
	Unavailable bool              `json:"unavailable,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

// PanelView is a collapsible panel. Only the first panel of a tab starts open.
type PanelView struct {
	Title    string        `json:"title"`
	Open     bool          `json:"open"`
	Sections []SectionView `json:"sections"`
	Controls []string      `json:"controls,omitempty"`
}

type TabView struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Active bool        `json:"active"`
	Panels []PanelView `json:"panels"`
}

type TrendLink struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PageView is a composed page, ready for a presentation layer.
type PageView struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Icon              string           `json:"icon,omitempty"`
	UpdatedOn         *time.Time       `json:"updatedOn,omitempty"`
	Unavailable       bool             `json:"unavailable,omitempty"`
	UnavailableReason string           `json:"unavailableReason,omitempty"`
	Tabs              []TabView        `json:"tabs"`
	Trends            []TrendLink      `json:"trends,omitempty"`
	Failures          []SectionFailure `json:"failures,omitempty"`
}

// SectionFailure records a section that could not be rendered.
type SectionFailure struct {
	Title   string `json:"title"`
	Catalog string `json:"catalog"`
	Table   string `json:"table"`
	Reason  string `json:"reason"`
}

// PageError is returned alongside a PageView when some of its sections failed.
// Unavailable holds the connection error when the data source could not be
// reached at all; the sections it affected are not listed in Failures.
type PageError struct {
	Failures    []SectionFailure
	Unavailable error
}

func (e *PageError) Error() string {
	titles := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		titles = append(titles, fmt.Sprintf("%q (%s)", f.Title, f.Reason))
	}
	switch {
	case e.Unavailable != nil && len(titles) == 0:
		return fmt.Sprintf("data source unavailable: %v", e.Unavailable)
	case e.Unavailable != nil:
		return fmt.Sprintf("data source unavailable: %v; failed sections: %s", e.Unavailable, strings.Join(titles, ", "))
	default:
		return fmt.Sprintf("%d section(s) failed: %s", len(e.Failures), strings.Join(titles, ", "))
	}
}

func (e *PageError) Unwrap() error { return e.Unavailable }

// unavailableText is shown in place of a section when the data source is down.
const unavailableText = "data unavailable"

// Composer builds pages. It holds no state between calls.
type Composer struct {
	fetcher  source.Fetcher
	catalogs CatalogLoader
	logger   *slog.Logger
}

func New(fetcher source.Fetcher, catalogs CatalogLoader, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{fetcher: fetcher, catalogs: catalogs, logger: logger}
}

// Compose renders sections in order as a single open panel. rowLimit below 1
// means 1. The returned view is never empty: failed sections become
// placeholders and are listed in the *PageError returned with it.
func (c *Composer) Compose(ctx context.Context, sections []SectionSpec, rowLimit int) (PageView, error) {
	if rowLimit < 1 {
		rowLimit = defaultRowLimit
	}
	cp := c.begin(ctx, "")
	panel := PanelView{Open: true, Sections: make([]SectionView, 0, len(sections))}
	for _, s := range sections {
		panel.Sections = append(panel.Sections, cp.section(s, rowLimit))
	}
	view := PageView{Tabs: []TabView{{ID: implicitTabID, Active: true, Panels: []PanelView{panel}}}}
	return view, cp.finish(&view)
}

// ComposePage renders every tab and panel of page. Each (table, row limit)
// pair is fetched at most once.
func (c *Composer) ComposePage(ctx context.Context, page *Page) (PageView, error) {
	cp := c.begin(ctx, page.ID)
	view := PageView{
		ID:    page.ID,
		Title: page.Title,
		Icon:  page.Icon,
		Tabs:  make([]TabView, 0, len(page.Tabs)),
	}
	for ti, tab := range page.Tabs {
		tv := TabView{ID: tab.ID, Title: tab.Title, Active: ti == 0, Panels: make([]PanelView, 0, len(tab.Panels))}
		for pi, panel := range tab.Panels {
			pv := PanelView{
				Title:    panel.Title,
				Open:     pi == 0,
				Sections: make([]SectionView, 0, len(panel.Tables)),
				Controls: panel.Controls,
			}
			for _, s := range panel.Tables {
				pv.Sections = append(pv.Sections, cp.section(s, page.RowLimit))
			}
			tv.Panels = append(tv.Panels, pv)
		}
		view.Tabs = append(view.Tabs, tv)
	}
	if page.Timestamp != nil {
		view.UpdatedOn = cp.updatedOn(page)
	}
	for _, tr := range page.Trends {
		view.Trends = append(view.Trends, TrendLink{ID: tr.ID, Title: tr.Title})
	}
	return view, cp.finish(&view)
}

type fetchKey struct {
	table string
	limit int
}

type fetchResult struct {
	rows []source.Row
	err  error
}

// composition is the state of a single page build.
type composition struct {
	ctx      context.Context
	c        *Composer
	page     string
	memo     map[fetchKey]fetchResult
	down     error
	failures []SectionFailure
}

func (c *Composer) begin(ctx context.Context, page string) *composition {
	return &composition{ctx: ctx, c: c, page: page, memo: make(map[fetchKey]fetchResult)}
}

func (cp *composition) fetch(table string, limit int) ([]source.Row, error) {
	key := fetchKey{table: table, limit: limit}
	if r, ok := cp.memo[key]; ok {
		return r.rows, r.err
	}
	if cp.down != nil {
		return nil, cp.down
	}
	rows, err := cp.c.fetcher.Fetch(cp.ctx, table, limit)
	if err != nil && source.IsConnectionFailure(err) {
		cp.down = err
	}
	cp.memo[key] = fetchResult{rows: rows, err: err}
	return rows, err
}

func (cp *composition) section(spec SectionSpec, rowLimit int) SectionView {
	sv := SectionView{Title: spec.Title, Catalog: spec.Catalog, Table: spec.Table}

	cat, err := cp.c.catalogs.Load(spec.Catalog)
	if err != nil {
		return cp.fail(sv, err)
	}
	rows, err := cp.fetch(spec.Table, rowLimit)
	if err != nil {
		return cp.fail(sv, err)
	}

	var view render.TableView
	if spec.ConvertedTable != "" || cat.Diagnostic() {
		converted := rows
		if spec.ConvertedTable != "" && spec.ConvertedTable != spec.Table {
			converted, err = cp.fetch(spec.ConvertedTable, rowLimit)
			if err != nil {
				return cp.fail(sv, err)
			}
		}
		view = render.RenderFieldData(cat, first(rows), first(converted), spec.Title)
	} else {
		view = render.Render(cat, first(rows), spec.Title)
	}
	sv.View = &view
	return sv
}

func (cp *composition) fail(sv SectionView, err error) SectionView {
	sv.Failed = true
	if source.IsConnectionFailure(err) {
		sv.Unavailable = true
		sv.Reason = unavailableText
		return sv
	}
	sv.Reason = reason(sv, err)
	cp.failures = append(cp.failures, SectionFailure{
		Title:   sv.Title,
		Catalog: sv.Catalog,
		Table:   sv.Table,
		Reason:  sv.Reason,
	})
	cp.c.logger.Warn("section failed",
		"page", cp.page,
		"catalog", sv.Catalog,
		"table", sv.Table,
		"error", err,
	)
	return sv
}

func reason(sv SectionView, err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Sprintf("catalog %s not found", sv.Catalog)
	case errors.Is(err, catalog.ErrMalformedEntry):
		return fmt.Sprintf("catalog %s is malformed", sv.Catalog)
	case errors.Is(err, source.ErrQueryFailed):
		return fmt.Sprintf("could not read table %s", sv.Table)
	default:
		return unavailableText
	}
}

func (cp *composition) finish(view *PageView) error {
	view.Failures = cp.failures
	if cp.down != nil {
		view.Unavailable = true
		view.UnavailableReason = "The station database cannot be reached."
		cp.c.logger.Error("data source unavailable", "page", cp.page, "error", cp.down)
	}
	if cp.down == nil && len(cp.failures) == 0 {
		return nil
	}
	return &PageError{Failures: cp.failures, Unavailable: cp.down}
}

// updatedOn reads the recording time from the newest row of the timestamp
// table, which defaults to the page's first table.
func (cp *composition) updatedOn(page *Page) *time.Time {
	table := page.Timestamp.Table
	if table == "" {
		sections := page.Sections()
		if len(sections) == 0 {
			return nil
		}
		table = sections[0].Table
	}
	rows, err := cp.fetch(table, page.RowLimit)
	if err != nil || len(rows) == 0 {
		return nil
	}
	t, ok := rowTime(page.Timestamp, rows[0])
	if !ok {
		return nil
	}
	return &t
}

// rowTime assembles a wall-clock time from the row's date and time columns.
// The station records local time without a zone, so the result is UTC.
func rowTime(ts *Timestamp, row source.Row) (time.Time, bool) {
	var parts [6]int
	for i, key := range []string{ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second} {
		f, ok := convert.Float(row[key])
		if !ok {
			return time.Time{}, false
		}
		parts[i] = int(f)
	}
	year, month, day := parts[0], parts[1], parts[2]
	hour, minute, second := parts[3], parts[4], parts[5]
	if year < 1 || month < 1 || month > 12 || day < 1 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes Feb 31 into March; such a row is not a real stamp.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

func first(rows []source.Row) source.Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
