// Package server exposes the feedback service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/evaluator"
	"github.com/guiperry/promptfeedback/feedback"
	"github.com/guiperry/promptfeedback/history"
	"github.com/guiperry/promptfeedback/utils"
)

// EvaluateRequest is the body of POST /v1/evaluate. Omitted Criteria and
// UseLLM fall back to the configured defaults; criterion names outside
// evaluator.CriterionNames are rejected. FromHistory re-evaluates the
// improved prompt of a previous evaluation instead of Prompt.
type EvaluateRequest struct {
	Prompt      string          `json:"prompt"`
	Criteria    map[string]bool `json:"criteria,omitempty"`
	UseLLM      *bool           `json:"useLLM,omitempty"`
	Model       string          `json:"model"`
	APIKey      string          `json:"apiKey"`
	FromHistory string          `json:"fromHistory"`
}

type HistoryResponse struct {
	Items []history.Item `json:"items"`
	Count int            `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type Server struct {
	svc      *feedback.Service
	criteria evaluator.Criteria
	useLLM   bool
	addr     string
	logger   utils.Logger
	registry *prometheus.Registry
	metrics  *metrics
	engine   *gin.Engine
}

func New(cfg *config.Config, svc *feedback.Service) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		svc:      svc,
		criteria: cfg.Criteria,
		useLLM:   cfg.UseLLM,
		addr:     cfg.ListenAddr,
		logger:   cfg.GetLogger(),
		registry: registry,
		metrics:  newMetrics(registry),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	v1.POST("/evaluate", s.handleEvaluate)
	v1.GET("/history", s.handleListHistory)
	v1.DELETE("/history", s.handleClearHistory)
	v1.GET("/history/:id", s.handleGetHistory)
	return router
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.latency.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleEvaluate handles POST /v1/evaluate.
//
//	200 OK: feedback.Response
//	400 Bad Request: invalid body or criteria, empty prompt, missing key, unknown model
//	404 Not Found: unknown fromHistory id
func (s *Server) handleEvaluate(c *gin.Context) {
	var body EvaluateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	req := feedback.Request{
		Prompt:   body.Prompt,
		Criteria: s.criteria,
		UseLLM:   s.useLLM,
		Model:    body.Model,
		APIKey:   body.APIKey,
	}
	if body.Criteria != nil {
		criteria, err := evaluator.CriteriaFromMap(body.Criteria)
		if err != nil {
			s.fail(c, http.StatusBadRequest, "INVALID_CRITERIA", err.Error())
			return
		}
		req.Criteria = criteria
	}
	if body.UseLLM != nil {
		req.UseLLM = *body.UseLLM
	}

	var (
		resp feedback.Response
		err  error
	)
	if body.FromHistory != "" {
		resp, err = s.svc.Reevaluate(c.Request.Context(), body.FromHistory, req)
	} else {
		resp, err = s.svc.Get(c.Request.Context(), req)
	}
	if err != nil {
		status, code := classify(err)
		s.fail(c, status, code, err.Error())
		return
	}

	s.metrics.evaluations.WithLabelValues(string(resp.Source), strconv.FormatBool(resp.Cached)).Inc()
	s.metrics.scores.WithLabelValues(string(resp.Source)).Observe(float64(resp.Result.Score))
	s.metrics.historyItems.Set(float64(s.svc.History().Len()))
	c.JSON(http.StatusOK, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, feedback.ErrEmptyPrompt):
		return http.StatusBadRequest, "EMPTY_PROMPT"
	case errors.Is(err, feedback.ErrMissingAPIKey):
		return http.StatusBadRequest, "MISSING_API_KEY"
	case errors.Is(err, feedback.ErrUnsupportedModel):
		return http.StatusBadRequest, "UNSUPPORTED_MODEL"
	case errors.Is(err, feedback.ErrHistoryNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "EVALUATION_FAILED"
	}
}

// handleListHistory handles GET /v1/history?limit=N, newest first.
func (s *Server) handleListHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items := s.svc.History().Recent(limit)
	c.JSON(http.StatusOK, HistoryResponse{Items: items, Count: len(items)})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	item, ok := s.svc.History().Get(c.Param("id"))
	if !ok {
		s.fail(c, http.StatusNotFound, "NOT_FOUND", feedback.ErrHistoryNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleClearHistory(c *gin.Context) {
	s.svc.History().Clear()
	s.metrics.historyItems.Set(0)
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, status int, code, message string) {
	s.logger.Warn("Request failed", "path", c.FullPath(), "code", code, "error", message)
	s.metrics.errors.WithLabelValues(code).Inc()
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}
