package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vizql-org/vizql/chart"
	"github.com/vizql-org/vizql/config"
	"github.com/vizql-org/vizql/pipeline"
	"github.com/vizql-org/vizql/server"
	"github.com/vizql-org/vizql/store"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
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

			srv := server.New(p, log,
				server.WithTheme(chart.Theme(cfg.Theme)),
				server.WithOrigins(cfg.CORSOrigins),
			)

			log.Info("starting vizql",
				zap.String("addr", cfg.ListenAddr),
				zap.String("db", cfg.DBPath),
				zap.String("model", cfg.GroqModel),
			)
			return srv.Run(cmd.Context(), cfg.ListenAddr)
		},
	}
}
