package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// PIPELINE — natural language → SQL → result → chart suggestion → answer
// ============================================================================
// Stages run sequentially over a State:
//
//	generateSQL → executeSQL → suggestChart → forecast → generateAnswer
//
// Only generateSQL failure aborts a run (nothing downstream can proceed
// without SQL). Execution errors become part of the answer; bad chart
// suggestions degrade to an empty table config the chart core handles.
// ============================================================================

// Store is the database boundary.
type Store interface {
	// Query runs SQL and returns ordered column→value rows.
	Query(ctx context.Context, sqlText string) ([]map[string]any, error)
	// SchemaInfo describes the tables for the SQL-generation prompt.
	SchemaInfo(ctx context.Context) (string, error)
}

// Response is the complete answer for one query.
type Response struct {
	Answer      string           `json:"answer"`
	ChartType   string           `json:"chart_type"`
	ChartConfig json.RawMessage  `json:"chart_config"`
	SQL         string           `json:"sql"`
	Result      []map[string]any `json:"result"`
}

// Pipeline answers natural-language questions against a Store using an LLM.
type Pipeline struct {
	llm   LLM
	store Store
	log   *zap.Logger
}

// New creates a Pipeline. A nil logger discards diagnostics.
func New(llm LLM, store Store, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{llm: llm, store: store, log: log}
}

// Run answers one query. The returned Response always has non-nil Result and
// ChartConfig fields; an error is returned only when SQL generation itself
// fails.
func (p *Pipeline) Run(ctx context.Context, query string) (*Response, error) {
	p.log.Info("received query", zap.String("query", truncate(query, 120)))

	sqlText, err := p.generateSQL(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}
	p.log.Info("generated sql", zap.String("sql", sqlText))

	resp := &Response{SQL: sqlText, Result: []map[string]any{}}

	rows, err := p.store.Query(ctx, sqlText)
	if err != nil {
		p.log.Warn("sql execution failed", zap.Error(err))
		resp.Answer = fmt.Sprintf("SQL execution error: %v", err)
	} else {
		resp.Result = rows
	}
	p.log.Info("query executed", zap.Int("rows", len(resp.Result)))

	suggestion := p.suggestChart(ctx, query, sqlText, resp.Result)
	resp.ChartType = suggestion.ChartType
	resp.ChartConfig = maybeForecast(suggestion.ChartConfig, resp.Result)

	if answer := p.generateAnswer(ctx, query, sqlText, resp.Result); answer != "" {
		resp.Answer = answer
	}
	if resp.Answer == "" {
		resp.Answer = "No answer generated"
	}

	return resp, nil
}

// ============================================================================
// STAGES
// ============================================================================

func (p *Pipeline) generateSQL(ctx context.Context, query string) (string, error) {
	schemaInfo, err := p.store.SchemaInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}

	reply, err := p.llm.Complete(ctx, sqlPrompt(schemaInfo, query))
	if err != nil {
		return "", err
	}

	sqlText := stripFences(reply)
	if sqlText == "" {
		return "", fmt.Errorf("model returned empty SQL")
	}
	return sqlText, nil
}

func (p *Pipeline) suggestChart(ctx context.Context, query, sqlText string, result []map[string]any) chartSuggestion {
	reply, err := p.llm.Complete(ctx, chartPrompt(query, sqlText, result))
	if err != nil {
		p.log.Warn("chart suggestion call failed", zap.Error(err))
		return emptyChartConfig()
	}

	suggestion, err := parseChartSuggestion(reply)
	if err != nil {
		p.log.Warn("chart suggestion rejected", zap.Error(err))
	}
	return suggestion
}

func (p *Pipeline) generateAnswer(ctx context.Context, query, sqlText string, result []map[string]any) string {
	reply, err := p.llm.Complete(ctx, answerPrompt(query, sqlText, result))
	if err != nil {
		p.log.Warn("answer generation failed", zap.Error(err))
		return ""
	}
	return stripFences(reply)
}
