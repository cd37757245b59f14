package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// HealthResponse is the JSON body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Directory string `json:"directory"`
}

// httpServer serves MCP over SSE next to health and metrics endpoints
type httpServer struct {
	parent *Server
	echo   *echo.Echo
	sse    *server.SSEServer
}

func (s *Server) newHTTPServer() *httpServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))

	h := &httpServer{
		parent: s,
		echo:   e,
		sse:    server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+s.config.Address())),
	}
	h.registerRoutes()

	return h
}

func (h *httpServer) registerRoutes() {
	h.echo.GET("/health", h.handleHealth)
	h.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.parent.gatherer, promhttp.HandlerOpts{})))
	h.echo.GET("/sse", echo.WrapHandler(h.sse.SSEHandler()))
	h.echo.POST("/message", echo.WrapHandler(h.sse.MessageHandler()))
}

func (h *httpServer) handleHealth(c echo.Context) error {
	cfg := h.parent.config
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   cfg.ServerName,
		Version:   cfg.Version,
		Directory: cfg.EMFDirectory,
	})
}

// Start listens on the configured address and blocks until ctx is cancelled.
// Cancellation triggers a graceful shutdown and a nil return.
func (h *httpServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := h.echo.Start(h.parent.config.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := h.sse.Shutdown(shutdownCtx); err != nil {
			h.parent.logger.Warn("sse shutdown", zap.Error(err))
		}
		if err := h.echo.Shutdown(shutdownCtx); err != nil {
			// SSE streams stay open until the client leaves
			_ = h.echo.Close()
			return fmt.Errorf("server shutdown: %w", err)
		}
		h.parent.logger.Info("server stopped")
		return nil
	}
}
