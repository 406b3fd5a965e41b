package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

// NewRouter wires the HTTP routes.
func NewRouter(ping PingHandler, move MoveHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), instrument())

	router.GET("/ping", ping.Ping)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/move", move.Move)

	return router
}

func NewServer(logger *slog.Logger, port string, router http.Handler) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// Start blocks until the server stops. A shutdown is not an error.
func (that *Server) Start() error {
	that.logger.Info("http server started", "addr", that.srv.Addr)

	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	that.logger.Info("http server stopped")

	return nil
}
