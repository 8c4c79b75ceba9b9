package chart

import (
	"reflect"
	"testing"
)

// ============================================================================
// PLAN SELECTOR TESTS
// ============================================================================

func TestSelectFallback(t *testing.T) {
	wantLabels := []string{"A", "B", "C", "D"}
	wantData := []float64{10, 20, 15, 30}

	for _, kind := range []Kind{KindBar, KindLine, KindPie, KindTable, Kind("scatter"), Kind("")} {
		t.Run(string(kind), func(t *testing.T) {
			plan := Select(nil, kind, ThemeLight)
			if !plan.Fallback {
				t.Error("plan not marked as fallback")
			}
			if plan.Kind != KindLine {
				t.Errorf("fallback kind = %q, want line", plan.Kind)
			}
			if !reflect.DeepEqual(plan.Labels, wantLabels) {
				t.Errorf("fallback labels = %v, want %v", plan.Labels, wantLabels)
			}
			if len(plan.Series) != 1 || !reflect.DeepEqual(plan.Series[0].Data, wantData) {
				t.Errorf("fallback series = %+v, want data %v", plan.Series, wantData)
			}
			if plan.Options.Title != "No chart data available" {
				t.Errorf("fallback title = %q", plan.Options.Title)
			}
		})
	}
}

func TestSelectUnknownKindDegrades(t *testing.T) {
	cfg := &NormalizedConfig{
		Labels: []string{"x"},
		Series: []NormalizedSeries{{Label: "Series", Data: []float64{1}}},
	}
	plan := Select(cfg, Kind("radar"), ThemeLight)
	if !plan.Fallback {
		t.Error("unknown kind should degrade to the fallback plan, not error")
	}
}

func TestSelectTableMissingCells(t *testing.T) {
	cfg := &NormalizedConfig{
		Labels: []string{"Q1", "Q2", "Q3"},
		Series: []NormalizedSeries{
			{Label: "Revenue", Data: []float64{100, 250.5}},
			{Label: "Cost", Data: []float64{40}},
		},
	}

	plan := Select(cfg, KindTable, ThemeLight)
	if plan.Table == nil {
		t.Fatal("table plan has no grid")
	}

	wantColumns := []string{"Label", "Revenue", "Cost"}
	if !reflect.DeepEqual(plan.Table.Columns, wantColumns) {
		t.Errorf("columns = %v, want %v", plan.Table.Columns, wantColumns)
	}

	wantRows := [][]string{
		{"Q1", "100", "40"},
		{"Q2", "250.50", "N/A"},
		{"Q3", "N/A", "N/A"},
	}
	if !reflect.DeepEqual(plan.Table.Rows, wantRows) {
		t.Errorf("rows = %v, want %v", plan.Table.Rows, wantRows)
	}
}

func TestSelectBarBeginsAtZero(t *testing.T) {
	cfg := &NormalizedConfig{
		Labels: []string{"Q1", "Q2"},
		Series: []NormalizedSeries{{Label: "Series", Data: []float64{100, 200}}},
	}
	plan := Select(cfg, KindBar, ThemeLight)
	if plan.Kind != KindBar {
		t.Fatalf("kind = %q, want bar", plan.Kind)
	}
	if !plan.Options.BeginAtZero {
		t.Error("bar plan must begin value axis at zero")
	}
	if len(plan.Series) != 1 || !reflect.DeepEqual(plan.Series[0].Data, []float64{100, 200}) {
		t.Errorf("series = %+v", plan.Series)
	}
}

func TestSelectPieOmitsAxes(t *testing.T) {
	cfg := &NormalizedConfig{
		Labels: []string{"a", "b"},
		Series: []NormalizedSeries{{Label: "Series", Data: []float64{30, 70}}},
	}
	plan := Select(cfg, KindPie, ThemeDark)
	if plan.Options.ShowAxes {
		t.Error("pie plan must not carry an orthogonal scale")
	}
	if plan.Options.GridColor != "" {
		t.Errorf("pie plan grid color = %q, want none", plan.Options.GridColor)
	}
}

func TestSelectForecastOverlay(t *testing.T) {
	cfg := &NormalizedConfig{
		Labels: []string{"Jan", "Feb", "Mar"},
		Series: []NormalizedSeries{
			{Label: "History", Data: []float64{1, 2, 3}, BorderColor: "#111"},
			{Label: "Forecast", Data: []float64{4, 5}, BorderColor: "#222"},
		},
	}

	plan := Select(cfg, KindLine, ThemeLight)
	if len(plan.Series) != 2 {
		t.Fatalf("got %d series, want 2", len(plan.Series))
	}

	history, forecast := plan.Series[0], plan.Series[1]

	if history.BorderDash != nil || history.PointRadius != 0 {
		t.Errorf("history series modified: %+v", history)
	}
	if history.BorderColor != "#111" {
		t.Errorf("history border = %q, want untouched", history.BorderColor)
	}

	if forecast.BorderDash == nil {
		t.Error("forecast series missing dashed stroke")
	}
	if forecast.PointRadius == 0 {
		t.Error("forecast series missing enlarged points")
	}
	if forecast.BorderColor != "rgba(255, 0, 0, 1)" {
		t.Errorf("forecast border = %q, want fixed highlight", forecast.BorderColor)
	}
	if !forecast.Fill {
		t.Error("forecast series must fill")
	}
}

func TestForecastOverlayRequiresExactPair(t *testing.T) {
	cases := []struct {
		name   string
		labels []string
		want   bool
	}{
		{"both present", []string{"History", "Forecast"}, true},
		{"among others", []string{"Actual", "History", "Forecast"}, true},
		{"forecast alone", []string{"Sales", "Forecast"}, false},
		{"history alone", []string{"History"}, false},
		{"case differs", []string{"history", "forecast"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := make([]NormalizedSeries, len(tc.labels))
			for i, l := range tc.labels {
				series[i] = NormalizedSeries{Label: l, Data: []float64{1}}
			}
			if got := forecastOverlayRule(series); got != tc.want {
				t.Errorf("forecastOverlayRule(%v) = %v, want %v", tc.labels, got, tc.want)
			}
		})
	}
}

// Scenario from end to end: a single-series bar spec without labels on the
// series itself.
func TestScenarioBarDefaults(t *testing.T) {
	raw := ParseRawSpec([]byte(`{"labels": ["Q1", "Q2"], "datasets": [{"data": [100, 200]}]}`))
	cfg := newTestNormalizer().Normalize(raw, KindBar)
	if cfg == nil {
		t.Fatal("Normalize() = nil, want config")
	}
	if cfg.Series[0].Label != "Series" {
		t.Errorf("label = %q, want default Series", cfg.Series[0].Label)
	}

	plan := Select(cfg, KindBar, ThemeLight)
	if !reflect.DeepEqual(plan.Series[0].Data, []float64{100, 200}) {
		t.Errorf("bar data = %v", plan.Series[0].Data)
	}
	if plan.Series[0].BackgroundColor.IsZero() {
		t.Error("bar series has no background color")
	}
	if plan.Series[0].BorderColor == "" {
		t.Error("bar series has no border color")
	}
}

func TestScenarioEmptyDatasetsFallsBack(t *testing.T) {
	raw := ParseRawSpec([]byte(`{"datasets": []}`))
	cfg := newTestNormalizer().Normalize(raw, KindPie)
	if cfg != nil {
		t.Fatalf("Normalize() = %+v, want nil", cfg)
	}
	plan := Select(cfg, KindPie, ThemeLight)
	if !plan.Fallback {
		t.Error("expected fallback plan for empty datasets")
	}
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{7, "7"},
		{-3, "-3"},
		{2.5, "2.50"},
		{0, "0"},
		// Beyond int64 range: must stay on the fractional path instead of
		// an out-of-range float→int conversion.
		{1e19, "10000000000000000000.00"},
		{-1e19, "-10000000000000000000.00"},
	}
	for _, tc := range cases {
		if got := formatCell(tc.in); got != tc.want {
			t.Errorf("formatCell(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStyleOptionsPerTheme(t *testing.T) {
	light := styleOptions(ThemeLight, "", true)
	dark := styleOptions(ThemeDark, "", true)
	if light.TickColor == dark.TickColor {
		t.Error("themes should differ in tick color")
	}
	if light.LegendPosition != dark.LegendPosition {
		t.Error("legend position is theme-independent")
	}
}
