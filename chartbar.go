package main

import (
	"fmt"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const chartValueUnits = 1_000_000 // graph position values in $mil

// chartHandlerComparisonBar draws the top holdings as grouped bars: current
// value next to the prior-quarter and prior-year values for the same CUSIP.
func chartHandlerComparisonBar(deps *Dependencies, report *Report, count int) template.HTML {
	rows := report.TopRows(count)

	x_axis := make([]string, 0, len(rows))
	currentData := make([]opts.BarData, 0, len(rows))
	priorQData := make([]opts.BarData, 0, len(rows))
	priorYData := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		label := row.Ticker
		if label == "" {
			label = row.Company
		}
		x_axis = append(x_axis, label)
		currentData = append(currentData, opts.BarData{Value: float64(row.CurrentValue) / chartValueUnits})
		priorQData = append(priorQData, opts.BarData{Value: float64(row.PriorQValue) / chartValueUnits})
		priorYData = append(priorYData, opts.BarData{Value: float64(row.PriorYValue) / chartValueUnits})
	}

	holdingsBar := charts.NewBar()
	holdingsBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "850px",
			Height: "350px",
			Theme:  types.ThemeVintage,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Top %d positions, %s", len(rows), report.CurrentFiling.QuarterLabel()),
			Subtitle: "Reported value in $mil",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "horizontal",
			Left:   "right",
			Top:    "top",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{}),
	)

	holdingsBar.SetXAxis(x_axis).
		AddSeries(report.CurrentFiling.QuarterLabel(), currentData)
	if report.PriorQuarterFiling != nil {
		holdingsBar.AddSeries(report.PriorQuarterFiling.QuarterLabel(), priorQData)
	}
	if report.PriorYearFiling != nil {
		holdingsBar.AddSeries(report.PriorYearFiling.QuarterLabel(), priorYData)
	}

	holdingsBar.Renderer = newSnippetRenderer(holdingsBar, holdingsBar.Validate)

	return renderToHtml(deps, holdingsBar)
}
