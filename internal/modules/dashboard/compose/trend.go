package compose

import (
	"context"
	"errors"
	"strconv"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/catalog"
	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/convert"
	"github.com/mvhdi/Weather-Station/internal/source"
)

var ErrTrendNotFound = errors.New("trend not found")

// Series is one field over time. A nil point is a row without a usable number.
type Series struct {
	Label  string     `json:"label"`
	Unit   string     `json:"unit,omitempty"`
	Points []*float64 `json:"points"`
}

// TrendView is a chart's data, oldest row first.
type TrendView struct {
	PageID string   `json:"pageId"`
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Trend fetches the rows for one of page's trends and builds its series.
func (c *Composer) Trend(ctx context.Context, page *Page, trendID string) (TrendView, error) {
	spec, ok := page.Trend(trendID)
	if !ok {
		return TrendView{}, ErrTrendNotFound
	}
	cat, err := c.catalogs.Load(spec.Catalog)
	if err != nil {
		return TrendView{}, err
	}
	rows, err := c.fetcher.Fetch(ctx, spec.Table, spec.Rows)
	if err != nil {
		return TrendView{}, err
	}
	view := buildTrend(spec, cat, rows, page.Timestamp)
	view.PageID = page.ID
	return view, nil
}

// buildTrend charts converted values where a formula applies and stored
// values otherwise. Fields with no numeric reading at all are left out.
func buildTrend(spec *TrendSpec, cat catalog.Catalog, rows []source.Row, ts *Timestamp) TrendView {
	view := TrendView{ID: spec.ID, Title: spec.Title, Labels: make([]string, 0, len(rows))}

	// rows arrive newest first
	ordered := make([]source.Row, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		ordered = append(ordered, rows[i])
	}

	for i, row := range ordered {
		view.Labels = append(view.Labels, axisLabel(row, i, ts))
	}

	for _, f := range cat.Fields {
		if f.Diagnostic || f.Key == "" {
			continue
		}
		s := Series{Label: f.Label, Unit: f.Unit, Points: make([]*float64, 0, len(ordered))}
		if f.Code.Converts() {
			s.Unit = convert.Convert(f.Code, 0).ConvertedUnit
		}
		var numeric bool
		for _, row := range ordered {
			d := convert.Value(f.Code, f.Unit, row[f.Key])
			if !d.Numeric {
				s.Points = append(s.Points, nil)
				continue
			}
			v := d.Result.Original
			if d.Result.HasConverted {
				v = d.Result.Converted
			}
			s.Points = append(s.Points, &v)
			numeric = true
		}
		if numeric {
			view.Series = append(view.Series, s)
		}
	}
	return view
}

func axisLabel(row source.Row, i int, ts *Timestamp) string {
	if ts != nil {
		if t, ok := rowTime(ts, row); ok {
			return t.Format("01/02 15:04")
		}
	}
	return strconv.Itoa(i + 1)
}
