package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// PROMPT BUILDERS — one per pipeline stage
// ============================================================================
// Prompts receive metadata (schema DDL, the generated SQL, the result rows)
// plus the user's question. The SQL prompt never sees data; the chart and
// answer prompts see the query result because they summarize it.
// ============================================================================

// sqlPrompt asks the model for a single executable SQLite query.
func sqlPrompt(schemaInfo, query string) string {
	var b strings.Builder
	b.WriteString("You are an expert SQL assistant. Generate a valid SQLite query for the following schema:\n\n")
	b.WriteString(schemaInfo)
	b.WriteString(`

Notes:
- Use exact table names, with quotes if they contain spaces (like "Order Details").
- Always use table aliases consistently.
- Return SQL only (no explanation, no markdown fences).

Question: `)
	b.WriteString(query)
	return b.String()
}

// chartPrompt asks the model to pick a chart kind and a Chart.js-shaped
// config for the result.
func chartPrompt(query, sqlText string, result []map[string]any) string {
	var b strings.Builder
	b.WriteString("You are a data visualization assistant.\n")
	b.WriteString("Based on the SQL query result below, suggest the best chart type and config.\n\n")
	fmt.Fprintf(&b, "Question: %s\nSQL: %s\nResult: %s\n", query, sqlText, marshalRows(result))
	b.WriteString(`
Rules:
- Choose chart_type from: ["bar", "line", "pie", "table"].
- Output JSON only with keys: chart_type, chart_config.
- chart_config must have "labels" and "datasets" compatible with Chart.js.
`)
	return b.String()
}

// answerPrompt asks the model for the final natural-language answer.
func answerPrompt(query, sqlText string, result []map[string]any) string {
	var b strings.Builder
	b.WriteString("The SQL query executed successfully.\n\n")
	fmt.Fprintf(&b, "Question: %s\nSQL: %s\nResult: %s\n", query, sqlText, marshalRows(result))
	b.WriteString("\nPlease provide a clear, concise answer to the user based on the result.")
	return b.String()
}

// marshalRows renders rows compactly for prompt embedding, capped so a huge
// result never blows up the request.
func marshalRows(result []map[string]any) string {
	const maxRows = 50
	rows := result
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(out)
}
