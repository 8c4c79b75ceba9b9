package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vizql-org/vizql/chart"
	"github.com/vizql-org/vizql/config"
	"github.com/vizql-org/vizql/pipeline"
	"github.com/vizql-org/vizql/render"
	"github.com/vizql-org/vizql/store"
)

// ============================================================================
// ASK — one-shot query from the terminal
// ============================================================================

func newAskCommand() *cobra.Command {
	var format string
	var outFile string

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Run a single natural-language query and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.GroqAPIKey == "" {
				return fmt.Errorf("GROQ_API_KEY is required")
			}

			db, err := store.Open(cfg.DBPath, log)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			llm := pipeline.NewGroq(pipeline.GroqConfig{
				APIKey:   cfg.GroqAPIKey,
				Model:    cfg.GroqModel,
				Endpoint: cfg.GroqEndpoint,
			})
			p := pipeline.New(llm, db, log)

			resp, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			plan := buildPlan(resp, chart.Theme(cfg.Theme))

			var w io.Writer = os.Stdout
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "text":
				return writeText(w, resp)
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"answer":       resp.Answer,
					"chart_type":   resp.ChartType,
					"chart_config": resp.ChartConfig,
					"sql":          resp.SQL,
					"result":       resp.Result,
					"render":       plan,
				})
			case "csv":
				return writeCSV(w, plan)
			case "html":
				return render.Preview(w, plan)
			default:
				return fmt.Errorf("unknown format %q: use text, json, csv or html", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, csv, html")
	cmd.Flags().StringVar(&outFile, "out", "", "Write output to file instead of stdout")
	return cmd
}

func buildPlan(resp *pipeline.Response, theme chart.Theme) chart.RenderPlan {
	kind := chart.ParseKind(resp.ChartType)
	normalizer := chart.NewNormalizer(nil, nil)
	cfg := normalizer.Normalize(chart.ParseRawSpec(resp.ChartConfig), kind)
	return chart.Select(cfg, kind, theme)
}

// ============================================================================
// OUTPUT FORMATS
// ============================================================================

func writeText(w io.Writer, resp *pipeline.Response) error {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintln(w, resp.Answer)
	if resp.SQL != "" {
		dim.Fprintf(w, "\nSQL: %s\n", resp.SQL)
	}
	if len(resp.Result) > 0 {
		dim.Fprintf(w, "Rows: %d\n", len(resp.Result))
	}
	return nil
}

// writeCSV emits the selected plan as spreadsheet-ready rows: table plans
// verbatim, chart plans as label + one column per series.
func writeCSV(w io.Writer, plan chart.RenderPlan) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if plan.Kind == chart.KindTable && plan.Table != nil {
		if err := cw.Write(plan.Table.Columns); err != nil {
			return err
		}
		for _, row := range plan.Table.Rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	headers := []string{"Label"}
	for _, s := range plan.Series {
		headers = append(headers, s.Label)
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	for i, label := range plan.Labels {
		row := []string{label}
		for _, s := range plan.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func fmtNum(v float64) string {
	if math.Abs(v) < 1<<62 && v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
