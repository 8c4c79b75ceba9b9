package chart

import (
	"fmt"
	"math"
)

// ============================================================================
// PLAN SELECTOR — NormalizedConfig + Kind → RenderPlan
// ============================================================================
// Pure function of its inputs: no state, no transitions, no retry. A nil
// config or an unrecognized kind resolves to the fixed fallback plan, so the
// presentation layer always has something to draw.
// ============================================================================

const (
	fallbackTitle       = "No chart data available"
	fallbackSeriesLabel = "No data"

	tableMissingCell = "N/A"
	tableLabelColumn = "Label"

	historyLabel  = "History"
	forecastLabel = "Forecast"

	forecastBorderColor = "rgba(255, 0, 0, 1)"
	forecastFillColor   = "rgba(255, 0, 0, 0.3)"
	forecastPointRadius = 5
)

var (
	fallbackLabels = []string{"A", "B", "C", "D"}
	fallbackData   = []float64{10, 20, 15, 30}

	forecastDash = []int{6, 4}
)

// Select chooses and parameterizes a presentation strategy for the given
// config and requested kind. cfg == nil (normalization failed) and unknown
// kinds both yield the fallback plan — degradation, never an error.
func Select(cfg *NormalizedConfig, kind Kind, theme Theme) RenderPlan {
	if cfg == nil {
		return fallbackPlan(theme)
	}
	switch kind {
	case KindTable:
		return tablePlan(cfg, theme)
	case KindBar:
		return barPlan(cfg, theme)
	case KindLine:
		return linePlan(cfg, theme)
	case KindPie:
		return piePlan(cfg, theme)
	default:
		return fallbackPlan(theme)
	}
}

// ============================================================================
// FALLBACK — deterministic 4-point line chart
// ============================================================================

func fallbackPlan(theme Theme) RenderPlan {
	return RenderPlan{
		Kind:   KindLine,
		Labels: append([]string(nil), fallbackLabels...),
		Series: []RenderSeries{{
			Label:           fallbackSeriesLabel,
			Data:            append([]float64(nil), fallbackData...),
			BackgroundColor: FlexColor{One: "rgba(128, 128, 128, 0.2)"},
			BorderColor:     "rgba(128, 128, 128, 1)",
			Fill:            true,
		}},
		Options:  styleOptions(theme, fallbackTitle, true),
		Fallback: true,
	}
}

// ============================================================================
// BAR — categorical, value axis begins at zero
// ============================================================================

func barPlan(cfg *NormalizedConfig, theme Theme) RenderPlan {
	series := make([]RenderSeries, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		series = append(series, RenderSeries{
			Label:           s.Label,
			Data:            s.Data,
			BackgroundColor: s.BackgroundColor,
			BorderColor:     s.BorderColor,
		})
	}
	opts := styleOptions(theme, "", true)
	opts.BeginAtZero = true
	return RenderPlan{Kind: KindBar, Labels: cfg.Labels, Series: series, Options: opts}
}

// ============================================================================
// LINE — time series with optional forecast overlay
// ============================================================================

// forecastOverlayRule reports whether the reserved History/Forecast label
// pair is present among the series. Matching is by exact label value; cased
// or localized variants do not trigger the overlay.
func forecastOverlayRule(series []NormalizedSeries) bool {
	var history, forecast bool
	for _, s := range series {
		switch s.Label {
		case historyLabel:
			history = true
		case forecastLabel:
			forecast = true
		}
	}
	return history && forecast
}

func linePlan(cfg *NormalizedConfig, theme Theme) RenderPlan {
	overlay := forecastOverlayRule(cfg.Series)
	series := make([]RenderSeries, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		rs := RenderSeries{
			Label:           s.Label,
			Data:            s.Data,
			BackgroundColor: s.BackgroundColor,
			BorderColor:     s.BorderColor,
			Fill:            true,
		}
		if overlay && s.Label == forecastLabel {
			rs.BorderDash = append([]int(nil), forecastDash...)
			rs.PointRadius = forecastPointRadius
			rs.BorderColor = forecastBorderColor
			rs.BackgroundColor = FlexColor{One: forecastFillColor}
		}
		series = append(series, rs)
	}
	return RenderPlan{Kind: KindLine, Labels: cfg.Labels, Series: series, Options: styleOptions(theme, "", true)}
}

// ============================================================================
// PIE — proportional, no orthogonal scale
// ============================================================================

func piePlan(cfg *NormalizedConfig, theme Theme) RenderPlan {
	series := make([]RenderSeries, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		series = append(series, RenderSeries{
			Label:           s.Label,
			Data:            s.Data,
			BackgroundColor: s.BackgroundColor,
			BorderColor:     s.BorderColor,
		})
	}
	return RenderPlan{Kind: KindPie, Labels: cfg.Labels, Series: series, Options: styleOptions(theme, "", false)}
}

// ============================================================================
// TABLE — one row per label, one column per series
// ============================================================================

func tablePlan(cfg *NormalizedConfig, theme Theme) RenderPlan {
	columns := make([]string, 0, len(cfg.Series)+1)
	columns = append(columns, tableLabelColumn)
	for _, s := range cfg.Series {
		columns = append(columns, s.Label)
	}

	rows := make([][]string, 0, len(cfg.Labels))
	for i, label := range cfg.Labels {
		row := make([]string, 0, len(columns))
		row = append(row, label)
		for _, s := range cfg.Series {
			if i < len(s.Data) {
				row = append(row, formatCell(s.Data[i]))
			} else {
				row = append(row, tableMissingCell)
			}
		}
		rows = append(rows, row)
	}

	return RenderPlan{
		Kind:    KindTable,
		Labels:  cfg.Labels,
		Table:   &TableGrid{Columns: columns, Rows: rows},
		Options: styleOptions(theme, "", false),
	}
}

// formatCell renders whole numbers without decimals, fractional with two.
// The int64 conversion is guarded: converting a float beyond the int64 range
// is implementation-defined, so huge values take the fractional path.
func formatCell(v float64) string {
	if math.Abs(v) < 1<<62 && v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// ============================================================================
// THEME STYLING — pass-through, no business logic
// ============================================================================

func styleOptions(theme Theme, title string, axes bool) Options {
	opts := Options{
		Title:          title,
		LegendPosition: "top",
		ShowAxes:       axes,
	}
	if !axes {
		return opts
	}
	switch theme {
	case ThemeDark:
		opts.TickColor = "#e0e0e0"
		opts.GridColor = "rgba(255, 255, 255, 0.15)"
	default:
		opts.TickColor = "#333333"
		opts.GridColor = "rgba(0, 0, 0, 0.1)"
	}
	return opts
}
