package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/vizql-org/vizql/chart"
)

// ============================================================================
// ECHARTS PREVIEW — RenderPlan → standalone HTML
// ============================================================================
// Pure presentation: the plan is already validated and parameterized, so
// this package only maps it onto go-echarts primitives (or an HTML table for
// the tabular kind). No business decisions are made here.
// ============================================================================

// Preview writes a standalone HTML rendering of the plan.
func Preview(w io.Writer, plan chart.RenderPlan) error {
	if plan.Kind == chart.KindTable && plan.Table != nil {
		return renderTable(w, plan)
	}

	page := components.NewPage()
	page.PageTitle = pageTitle(plan)

	switch plan.Kind {
	case chart.KindBar:
		page.AddCharts(buildBar(plan))
	case chart.KindPie:
		page.AddCharts(buildPie(plan))
	default:
		// Line covers both the line kind and the fallback plan.
		page.AddCharts(buildLine(plan))
	}

	return page.Render(w)
}

func pageTitle(plan chart.RenderPlan) string {
	if plan.Options.Title != "" {
		return plan.Options.Title
	}
	return "VizQL preview"
}

// ============================================================================
// CHART BUILDERS
// ============================================================================

func globalOptions(plan chart.RenderPlan) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: plan.Options.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  plan.Options.LegendPosition,
		}),
	}
}

func buildBar(plan chart.RenderPlan) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(plan)...)
	bar.SetXAxis(plan.Labels)

	for _, s := range plan.Series {
		items := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			items[i] = opts.BarData{Value: v}
			if i < len(s.BackgroundColor.Many) {
				items[i].ItemStyle = &opts.ItemStyle{Color: s.BackgroundColor.Many[i]}
			}
		}
		bar.AddSeries(s.Label, items)
	}
	return bar
}

func buildLine(plan chart.RenderPlan) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(plan)...)
	line.SetXAxis(plan.Labels)

	for _, s := range plan.Series {
		items := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			items[i] = opts.LineData{Value: v}
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
		}
		lineStyle := opts.LineStyle{Color: s.BorderColor}
		if len(s.BorderDash) > 0 {
			lineStyle.Type = "dashed"
		}
		seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(lineStyle))
		if s.Fill {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Color:   s.BackgroundColor.One,
				Opacity: 0.3,
			}))
		}

		line.AddSeries(s.Label, items, seriesOpts...)
	}
	return line
}

func buildPie(plan chart.RenderPlan) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(plan)...)

	// A pie draws the first series; slices come from the labels.
	if len(plan.Series) > 0 {
		s := plan.Series[0]
		items := make([]opts.PieData, 0, len(s.Data))
		for i, v := range s.Data {
			name := fmt.Sprintf("Slice %d", i+1)
			if i < len(plan.Labels) {
				name = plan.Labels[i]
			}
			item := opts.PieData{Name: name, Value: v}
			if i < len(s.BackgroundColor.Many) {
				item.ItemStyle = &opts.ItemStyle{Color: s.BackgroundColor.Many[i]}
			}
			items = append(items, item)
		}
		pie.AddSeries(s.Label, items)
	}
	return pie
}

// ============================================================================
// TABLE RENDERING
// ============================================================================

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title>
<style>
table { border-collapse: collapse; font-family: system-ui, sans-serif; }
th, td { border: 1px solid #ccc; padding: 6px 12px; text-align: left; }
th { background: #f4f4f4; }
</style>
</head>
<body>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

func renderTable(w io.Writer, plan chart.RenderPlan) error {
	return tableTemplate.Execute(w, struct {
		Title   string
		Columns []string
		Rows    [][]string
	}{
		Title:   pageTitle(plan),
		Columns: plan.Table.Columns,
		Rows:    plan.Table.Rows,
	})
}
