package views

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/compose"
)

// RenderTrend writes a standalone HTML line chart, one series per field.
func RenderTrend(w io.Writer, tv compose.TrendView) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: tv.Title,
			Theme:     "dark",
			Width:     "100%",
			Height:    "640px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    tv.Title,
			Subtitle: fmt.Sprintf("last %d readings", len(tv.Labels)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)

	line.SetXAxis(tv.Labels)
	for _, s := range tv.Series {
		line.AddSeries(seriesName(s), lineData(s.Points),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}
	return line.Render(w)
}

func seriesName(s compose.Series) string {
	if s.Unit == "" {
		return s.Label
	}
	return fmt.Sprintf("%s (%s)", s.Label, s.Unit)
}

// lineData maps gaps to "-", the echarts marker for a missing point.
func lineData(points []*float64) []opts.LineData {
	out := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		if p == nil {
			out = append(out, opts.LineData{Value: "-"})
			continue
		}
		out = append(out, opts.LineData{Value: *p})
	}
	return out
}
