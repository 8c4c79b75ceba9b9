// Package vizql turns natural language questions into SQL, tabular results,
// and render-ready chart plans.
//
// Usage:
//
//	import "github.com/vizql-org/vizql/chart"
//
//	raw := chart.ParseRawSpec(resp.ChartConfig)
//	cfg := chart.NewNormalizer(nil, logger).Normalize(raw, chart.ParseKind(resp.ChartType))
//	plan := chart.Select(cfg, chart.ParseKind(resp.ChartType), chart.ThemeLight)
//
// The chart package validates untrusted Chart.js-shaped chart descriptions
// and selects a presentation strategy; it performs no I/O. Query answering
// (SQL generation, execution, chart suggestion, forecasting) lives in the
// pipeline package, which is the only component that calls an external
// AI service.
package vizql
