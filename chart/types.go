package chart

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ============================================================================
// CHART TYPES — Untrusted Input and Normalized Output
// ============================================================================
// RawChartSpec arrives from the answering service and is never trusted: any
// field may be missing or carry the wrong JSON shape. Decoding is tolerant —
// a malformed field decodes to its zero value instead of failing the whole
// document, and the normalizer filters the wreckage afterwards. Everything
// downstream of Normalize operates on fully-typed data with no further
// defensive checks.
// ============================================================================

// Kind is the requested presentation form.
type Kind string

const (
	KindBar   Kind = "bar"
	KindLine  Kind = "line"
	KindPie   Kind = "pie"
	KindTable Kind = "table"
)

// ParseKind maps an arbitrary chart_type string onto a Kind.
// Unknown values pass through unchanged — the selector degrades them to the
// fallback plan rather than treating them as errors.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Theme selects light or dark presentation styling. It carries no business
// logic and is passed explicitly into Select — never read from ambient state.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ============================================================================
// FLEX COLOR — one color or a per-point palette
// ============================================================================

// FlexColor is a Chart.js-style color value: either a single color string or
// a per-point list (one swatch per bar/slice). Any other JSON shape decodes
// to the zero value.
type FlexColor struct {
	One  string
	Many []string
}

// IsZero reports whether no color was provided.
func (c FlexColor) IsZero() bool { return c.One == "" && len(c.Many) == 0 }

func (c FlexColor) MarshalJSON() ([]byte, error) {
	if len(c.Many) > 0 {
		return json.Marshal(c.Many)
	}
	if c.One != "" {
		return json.Marshal(c.One)
	}
	return []byte("null"), nil
}

func (c *FlexColor) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		c.One = one
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		c.Many = many
	}
	return nil
}

// ============================================================================
// RAW CHART SPEC — untrusted
// ============================================================================

// RawSeries is one untrusted data series. A series only counts as valid when
// Data decoded as a non-empty numeric sequence; everything else is optional.
type RawSeries struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data,omitempty"`
	BackgroundColor FlexColor `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor,omitempty"`
}

// UnmarshalJSON decodes a series tolerantly: malformed fields decode to their
// zero value, and a non-object element yields an empty (invalid) series
// rather than an error so that one bad dataset cannot sink the whole spec.
// The zero-value reset matters for sequences: encoding/json fills a slice
// with zero elements before reporting a per-element error, so `["a", "b"]`
// would otherwise leak through as [0 0] and count as valid data.
func (s *RawSeries) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Label           json.RawMessage `json:"label"`
		Data            json.RawMessage `json:"data"`
		BackgroundColor json.RawMessage `json:"backgroundColor"`
		BorderColor     json.RawMessage `json:"borderColor"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return nil
	}
	if json.Unmarshal(shadow.Label, &s.Label) != nil {
		s.Label = ""
	}
	if json.Unmarshal(shadow.Data, &s.Data) != nil {
		s.Data = nil
	}
	if json.Unmarshal(shadow.BackgroundColor, &s.BackgroundColor) != nil {
		s.BackgroundColor = FlexColor{}
	}
	if json.Unmarshal(shadow.BorderColor, &s.BorderColor) != nil {
		s.BorderColor = ""
	}
	return nil
}

// RawChartSpec is the unvalidated chart description received from the
// answering service. Labels is nil when absent or not a string sequence;
// Datasets is nil when absent or not a sequence.
type RawChartSpec struct {
	Labels   []string    `json:"labels,omitempty"`
	Datasets []RawSeries `json:"datasets,omitempty"`
}

func (r *RawChartSpec) UnmarshalJSON(data []byte) error {
	var shadow struct {
		Labels   json.RawMessage `json:"labels"`
		Datasets json.RawMessage `json:"datasets"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	if json.Unmarshal(shadow.Labels, &r.Labels) != nil {
		r.Labels = nil
	}
	if json.Unmarshal(shadow.Datasets, &r.Datasets) != nil {
		r.Datasets = nil
	}
	return nil
}

// ParseRawSpec decodes an untrusted chart_config payload. Returns nil when
// the payload is absent, null, or not a JSON object — callers hand the nil
// straight to Normalize, which fails closed.
func ParseRawSpec(data []byte) *RawChartSpec {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var raw RawChartSpec
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	return &raw
}

// ============================================================================
// NORMALIZED CONFIG — validated, fully defaulted
// ============================================================================

// NormalizedSeries is a validated series: non-empty label, non-empty data,
// resolved colors.
type NormalizedSeries struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor FlexColor `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
}

// NormalizedConfig is the validated chart description ready for plan
// selection. Invariant: Series is never empty.
type NormalizedConfig struct {
	Labels []string           `json:"labels"`
	Series []NormalizedSeries `json:"series"`
}

// ============================================================================
// RENDER PLAN — handed to the presentation layer
// ============================================================================

// Options carries pass-through presentation styling derived from the theme.
type Options struct {
	Title          string `json:"title,omitempty"`
	LegendPosition string `json:"legendPosition"`
	TickColor      string `json:"tickColor,omitempty"`
	GridColor      string `json:"gridColor,omitempty"`
	BeginAtZero    bool   `json:"beginAtZero"`
	ShowAxes       bool   `json:"showAxes"`
}

// RenderSeries is one fully parameterized series in a RenderPlan.
type RenderSeries struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor FlexColor `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderDash      []int     `json:"borderDash,omitempty"`
	PointRadius     int       `json:"pointRadius,omitempty"`
	Fill            bool      `json:"fill"`
}

// TableGrid is the tabular rendering: one row per label, one column per
// series, with a literal "N/A" wherever a series is shorter than the labels.
type TableGrid struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RenderPlan is the fully parameterized description handed to the
// presentation layer. Exactly one of Series or Table is populated.
type RenderPlan struct {
	Kind     Kind           `json:"kind"`
	Labels   []string       `json:"labels,omitempty"`
	Series   []RenderSeries `json:"series,omitempty"`
	Table    *TableGrid     `json:"table,omitempty"`
	Options  Options        `json:"options"`
	Fallback bool           `json:"fallback"`
}
