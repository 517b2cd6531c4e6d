// Package server exposes the pipeline as an HTTP question-answering module.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler answers module requests
type Handler interface {
	Handle(ctx context.Context, req pipeline.Request) ([]pipeline.Response, error)
}

// Server serves module requests over HTTP
type Server struct {
	handler Handler
	router  *gin.Engine
	logger  *zap.SugaredLogger
}

// New creates a server and registers its routes:
//
//	POST /         answer a module request
//	GET  /healthz  liveness probe
//	GET  /metrics  Prometheus metrics
func New(handler Handler, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		handler: handler,
		router:  gin.New(),
		logger:  logger.ComponentLogger("server"),
	}

	s.router.Use(gin.Recovery())
	if debug {
		s.router.Use(gin.Logger())
	}

	s.router.POST("/", s.handleRequest)
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Infow("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleRequest answers one request. Malformed requests get 400; any
// failure while answering yields an empty response list.
func (s *Server) handleRequest(c *gin.Context) {
	var req pipeline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	responses, err := s.handler.Handle(c.Request.Context(), req)
	if err != nil {
		s.logger.Warnw("Request failed",
			logger.FieldRequestID, req.ID,
			logger.FieldError, err,
		)
		responses = []pipeline.Response{}
	}

	c.JSON(http.StatusOK, responses)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
