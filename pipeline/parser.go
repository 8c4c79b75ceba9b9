package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ============================================================================
// RESPONSE PARSERS — defensive extraction from LLM replies
// ============================================================================
// Models decorate answers with markdown fences and prose no matter what the
// prompt says. SQL is cleaned by stripping fences; chart suggestions are
// recovered by grabbing the outermost JSON object from the reply.
// ============================================================================

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// stripFences removes surrounding markdown code fences from a reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```sql", "```SQL", "```json", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// chartSuggestion is the parsed chart proposal.
type chartSuggestion struct {
	ChartType   string          `json:"chart_type"`
	ChartConfig json.RawMessage `json:"chart_config"`
}

// emptyChartConfig is the suggestion used when the model's reply cannot be
// parsed: a table over an empty spec, which the chart core degrades safely.
func emptyChartConfig() chartSuggestion {
	return chartSuggestion{
		ChartType:   "table",
		ChartConfig: json.RawMessage(`{"labels": [], "datasets": []}`),
	}
}

// parseChartSuggestion extracts a chart_type/chart_config pair from a model
// reply. Parse failures return the empty-table fallback and an error for
// logging; the pipeline never fails on a bad suggestion.
func parseChartSuggestion(reply string) (chartSuggestion, error) {
	match := jsonObjectRegex.FindString(reply)
	if match == "" {
		return emptyChartConfig(), fmt.Errorf("no JSON object in chart suggestion: %s", truncate(reply, 120))
	}

	var parsed chartSuggestion
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return emptyChartConfig(), fmt.Errorf("failed to parse chart suggestion: %w", err)
	}

	if parsed.ChartType == "" {
		parsed.ChartType = "table"
	}
	if len(parsed.ChartConfig) == 0 || string(parsed.ChartConfig) == "null" {
		parsed.ChartConfig = emptyChartConfig().ChartConfig
	}
	return parsed, nil
}
