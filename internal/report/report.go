// Package report renders HTML charts of optics groups.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kttn8769/relion-optics-group-assigner/internal/membership"
	"github.com/kttn8769/relion-optics-group-assigner/internal/opticsgroup"
)

// WriteFindReport renders the beam shift positions of every micrograph,
// one series per optics group, and the number of micrographs per group.
func WriteFindReport(w io.Writer, m membership.Table) error {
	summaries := m.Summaries()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Beam shift positions",
			Subtitle: fmt.Sprintf("%d micrographs, %d optics groups", len(m.Rows), len(summaries)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "shift_x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "shift_y", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(summaries) <= 30)}),
	)
	points := make(map[int][]opts.ScatterData, len(summaries))
	for _, r := range m.Rows {
		points[r.OpticsGroup] = append(points[r.OpticsGroup], opts.ScatterData{
			Value:      []any{r.ShiftX, r.ShiftY},
			Symbol:     "circle",
			SymbolSize: 8,
			Name:       r.Filename,
		})
	}
	for _, s := range summaries {
		scatter.AddSeries(groupLabel(s.OpticsGroup), points[s.OpticsGroup])
	}

	x := make([]string, len(summaries))
	y := make([]opts.BarData, len(summaries))
	for i, s := range summaries {
		x[i] = strconv.Itoa(s.OpticsGroup)
		y[i] = opts.BarData{Value: s.Count}
	}
	bar := countBar("Micrographs per optics group", "micrographs", x, y)

	page := components.NewPage()
	page.AddCharts(scatter, bar)
	return page.Render(w)
}

// WriteApplyReport renders the number of particles per optics group.
func WriteApplyReport(w io.Writer, counts []opticsgroup.GroupCount) error {
	x := make([]string, len(counts))
	y := make([]opts.BarData, len(counts))
	for i, c := range counts {
		x[i] = strconv.Itoa(c.OpticsGroup)
		y[i] = opts.BarData{Value: c.Particles}
	}
	return countBar("Particles per optics group", "particles", x, y).Render(w)
}

func countBar(title, series string, x []string, y []opts.BarData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "optics group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: series, Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries(series, y)
	return bar
}

func groupLabel(id int) string {
	return fmt.Sprintf("opticsGroup%d", id)
}
