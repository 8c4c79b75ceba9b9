package pipeline

import (
	"encoding/json"
	"math"

	"github.com/vizql-org/vizql/chart"
)

// ============================================================================
// FORECAST — least-squares trend projection
// ============================================================================
// When the result rows look like a time series (every row carries "period"
// and "value"), a linear trend is fitted and projected six periods ahead.
// The projection becomes a dataset labeled "Forecast" with the fixed red
// palette, and the existing first series is relabeled "History" so the chart
// core's forecast overlay styling kicks in.
// ============================================================================

const forecastSteps = 6

const (
	forecastBorderColor = "rgba(255, 0, 0, 1)"
	forecastFillColor   = "rgba(255, 0, 0, 0.3)"
)

// maybeForecast augments a chart config with a forecast series when the
// result is a period/value time series. Returns the input unchanged when the
// shape does not fit — forecasting is opportunistic, never an error.
func maybeForecast(config json.RawMessage, result []map[string]any) json.RawMessage {
	values, ok := periodValues(result)
	if !ok {
		return config
	}

	projection := linearTrend(values, forecastSteps)
	if projection == nil {
		return config
	}

	raw := chart.ParseRawSpec(config)
	if raw == nil || len(raw.Datasets) == 0 {
		return config
	}

	relabelHistory(raw)
	raw.Datasets = append(raw.Datasets, chart.RawSeries{
		Label:           "Forecast",
		Data:            projection,
		BorderColor:     forecastBorderColor,
		BackgroundColor: chart.FlexColor{One: forecastFillColor},
	})

	augmented, err := json.Marshal(raw)
	if err != nil {
		return config
	}
	return augmented
}

// relabelHistory names the first populated series "History" so the reserved
// History/Forecast pair is complete. Authored labels on other series stay.
func relabelHistory(raw *chart.RawChartSpec) {
	for i := range raw.Datasets {
		if len(raw.Datasets[i].Data) > 0 {
			raw.Datasets[i].Label = "History"
			return
		}
	}
}

// periodValues extracts the value column when every row carries both a
// period and a numeric value.
func periodValues(result []map[string]any) ([]float64, bool) {
	if len(result) < 2 {
		return nil, false
	}
	values := make([]float64, 0, len(result))
	for _, row := range result {
		if _, ok := row["period"]; !ok {
			return nil, false
		}
		v, ok := toFloat(row["value"])
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// linearTrend fits y = a + b·x by least squares over 0..n-1 and returns the
// next steps projected values, rounded to two decimals.
func linearTrend(values []float64, steps int) []float64 {
	n := float64(len(values))
	if len(values) < 2 || steps <= 0 {
		return nil
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	projection := make([]float64, steps)
	for k := range projection {
		x := n + float64(k)
		projection[k] = roundTo2(intercept + slope*x)
	}
	return projection
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toFloat coerces the numeric types database/sql hands back.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
