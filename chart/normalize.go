package chart

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// NORMALIZER — untrusted RawChartSpec → validated NormalizedConfig
// ============================================================================
// Fails closed: anything that cannot become a complete chart yields nil, and
// the rejection is logged as a warning, never surfaced as an error. No
// partial or empty charts are ever produced — Select turns a nil config into
// the fixed fallback plan.
// ============================================================================

const (
	defaultSeriesLabel = "Series"

	lineFillAlpha = 0.2
	swatchAlpha   = 0.6
	borderAlpha   = 1.0
)

// Normalizer validates and defaults untrusted chart specs.
type Normalizer struct {
	colors ColorFunc
	log    *zap.Logger
}

// NewNormalizer builds a Normalizer. A nil colors falls back to RandomColor;
// a nil logger discards diagnostics.
func NewNormalizer(colors ColorFunc, log *zap.Logger) *Normalizer {
	if colors == nil {
		colors = RandomColor
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{colors: colors, log: log}
}

// Normalize produces a validated, fully-defaulted config, or nil when no
// valid chart can be made from the input. The input is never mutated.
func (n *Normalizer) Normalize(raw *RawChartSpec, kind Kind) *NormalizedConfig {
	if raw == nil {
		n.log.Warn("chart config absent, nothing to normalize")
		return nil
	}
	if raw.Datasets == nil {
		n.log.Warn("chart config has no datasets sequence",
			zap.Int("labels", len(raw.Labels)))
		return nil
	}

	survivors := make([]RawSeries, 0, len(raw.Datasets))
	for _, ds := range raw.Datasets {
		if len(ds.Data) == 0 {
			continue
		}
		survivors = append(survivors, ds)
	}
	if len(survivors) == 0 {
		n.log.Warn("every series rejected, no chart",
			zap.Int("datasets", len(raw.Datasets)))
		return nil
	}

	labels := raw.Labels
	if labels == nil {
		labels = make([]string, len(survivors[0].Data))
		for i := range labels {
			labels[i] = fmt.Sprintf("Label %d", i+1)
		}
	}

	series := make([]NormalizedSeries, 0, len(survivors))
	for _, ds := range survivors {
		s := NormalizedSeries{
			Label:           strings.TrimSpace(ds.Label),
			Data:            ds.Data,
			BackgroundColor: n.backgroundFor(ds, kind, len(labels)),
			BorderColor:     ds.BorderColor,
		}
		if s.Label == "" {
			s.Label = defaultSeriesLabel
		}
		if s.BorderColor == "" {
			s.BorderColor = n.colors(borderAlpha)
		}
		series = append(series, s)
	}

	return &NormalizedConfig{Labels: labels, Series: series}
}

// backgroundFor resolves a series background. Author-provided colors pass
// through unchanged. Generated colors depend on the kind: lines get one
// translucent fill shared by the whole series, everything else gets an
// independent swatch per label.
func (n *Normalizer) backgroundFor(ds RawSeries, kind Kind, labelCount int) FlexColor {
	if !ds.BackgroundColor.IsZero() {
		return ds.BackgroundColor
	}
	if kind == KindLine {
		return FlexColor{One: n.colors(lineFillAlpha)}
	}
	swatches := make([]string, labelCount)
	for i := range swatches {
		swatches[i] = n.colors(swatchAlpha)
	}
	return FlexColor{Many: swatches}
}
