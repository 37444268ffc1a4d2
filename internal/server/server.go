// Package server exposes a tool Registry over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

// HeaderCallID carries the caller's tool call id on single executions.
const HeaderCallID = "X-Call-ID"

const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Addr        string
	CORSOrigins []string
	// Metrics is served on /metrics when non-nil.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server is the HTTP front of a Registry.
type Server struct {
	reg    *agenttool.Registry
	opts   Options
	engine *gin.Engine
}

// New builds the routes. Call Run to listen.
func New(reg *agenttool.Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		if len(opts.CORSOrigins) == 1 && opts.CORSOrigins[0] == "*" {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = opts.CORSOrigins
		}
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", HeaderCallID)
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{reg: reg, opts: opts, engine: engine}
	engine.GET("/healthz", s.health)
	v1 := engine.Group("/v1")
	v1.GET("/functions", s.functions)
	v1.GET("/tools", s.tools)
	v1.POST("/tools/:name/execute", s.execute)
	v1.POST("/calls", s.batch)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on Options.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("http server listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

type toolInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    string              `json:"category,omitempty"`
	ReadOnly    bool                `json:"read_only"`
	Examples    []agenttool.Example `json:"examples,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tools": s.reg.Count()})
}

func (s *Server) functions(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, s.reg.OpenAIFunctionsByCategory(category))
		return
	}
	c.JSON(http.StatusOK, s.reg.OpenAIFunctions())
}

func (s *Server) tools(c *gin.Context) {
	all := s.reg.GetAllTools()
	out := make([]toolInfo, len(all))
	for i, t := range all {
		cfg := t.Config()
		info := toolInfo{Name: cfg.Name, Description: cfg.Description, Category: cfg.Category, Examples: cfg.Examples}
		if meta, ok := t.(agenttool.ToolMetadata); ok {
			info.ReadOnly = meta.ReadOnly()
		}
		out[i] = info
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) execute(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	res := s.reg.Execute(c.Request.Context(), agenttool.ToolCall{
		ID:        c.GetHeader(HeaderCallID),
		Name:      c.Param("name"),
		Arguments: body,
	})
	c.JSON(statusOf(res), res)
}

func (s *Server) batch(c *gin.Context) {
	var calls []agenttool.ToolCall
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&calls); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array of tool calls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.reg.ExecuteBatch(c.Request.Context(), calls))
}

// statusOf maps a result to an HTTP status. Tool failures other than an
// unknown tool are still 200: the envelope carries the error.
func statusOf(res agenttool.ToolResult) int {
	if res.Error != nil && res.Error.Code == agenttool.CodeToolNotFound {
		return http.StatusNotFound
	}
	return http.StatusOK
}
