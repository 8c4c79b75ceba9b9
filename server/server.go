package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizql-org/vizql/chart"
	"github.com/vizql-org/vizql/pipeline"
	"github.com/vizql-org/vizql/render"
)

// ============================================================================
// HTTP SERVER — /ask, /health, /preview, /debug
// ============================================================================
// The server owns no chart semantics: it runs the pipeline, normalizes the
// suggested config, selects a render plan and returns everything the caller
// needs in one response. The raw LLM config is kept verbatim for /debug.
// ============================================================================

// Asker runs a natural-language query end to end.
type Asker interface {
	Run(ctx context.Context, query string) (*pipeline.Response, error)
}

type Server struct {
	asker      Asker
	normalizer *chart.Normalizer
	theme      chart.Theme
	origins    map[string]bool
	log        *zap.Logger

	mu   sync.Mutex
	last *AskResponse
}

type Option func(*Server)

// WithTheme sets the theme applied to every render plan.
func WithTheme(theme chart.Theme) Option {
	return func(s *Server) { s.theme = theme }
}

// WithOrigins sets the allowed CORS origins.
func WithOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = make(map[string]bool, len(origins))
		for _, o := range origins {
			s.origins[o] = true
		}
	}
}

// WithColors overrides the series color generator.
func WithColors(colors chart.ColorFunc) Option {
	return func(s *Server) { s.normalizer = chart.NewNormalizer(colors, s.log) }
}

func New(asker Asker, log *zap.Logger, options ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		asker:      asker,
		normalizer: chart.NewNormalizer(nil, log),
		theme:      chart.ThemeLight,
		origins:    map[string]bool{},
		log:        log,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// ============================================================================
// REQUEST / RESPONSE SHAPES
// ============================================================================

type AskRequest struct {
	Query string `json:"query"`
}

type AskResponse struct {
	Answer      string           `json:"answer"`
	ChartType   string           `json:"chart_type"`
	ChartConfig json.RawMessage  `json:"chart_config"`
	SQL         string           `json:"sql"`
	Result      []map[string]any `json:"result"`
	Render      chart.RenderPlan `json:"render"`
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), s.cors())

	router.POST("/ask", s.handleAsk)
	router.GET("/health", s.handleHealth)
	router.GET("/preview", s.handlePreview)
	router.GET("/debug", s.handleDebug)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query cannot be empty"})
		return
	}

	resp, err := s.asker.Run(c.Request.Context(), req.Query)
	if err != nil {
		s.log.Error("pipeline failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Internal Server Error",
			"detail": err.Error(),
		})
		return
	}

	kind := chart.ParseKind(resp.ChartType)
	raw := chart.ParseRawSpec(resp.ChartConfig)
	cfg := s.normalizer.Normalize(raw, kind)
	plan := chart.Select(cfg, kind, s.theme)

	out := &AskResponse{
		Answer:      resp.Answer,
		ChartType:   resp.ChartType,
		ChartConfig: resp.ChartConfig,
		SQL:         resp.SQL,
		Result:      resp.Result,
		Render:      plan,
	}

	s.mu.Lock()
	s.last = out
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handlePreview renders the most recent response as a standalone HTML page.
func (s *Server) handlePreview(c *gin.Context) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no response to preview yet"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.Preview(c.Writer, last.Render); err != nil {
		s.log.Error("preview render failed", zap.Error(err))
	}
}

// handleDebug returns the last raw chart config exactly as the model
// produced it, before any normalization.
func (s *Server) handleDebug(c *gin.Context) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no response to inspect yet"})
		return
	}
	if len(last.ChartConfig) == 0 {
		c.JSON(http.StatusOK, gin.H{"chart_config": nil})
		return
	}
	c.Data(http.StatusOK, "application/json", last.ChartConfig)
}

// ============================================================================
// MIDDLEWARE
// ============================================================================

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.origins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
