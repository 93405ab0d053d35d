// Package server assembles the HTTP surface: routing, middleware, and
// lifecycle.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/dfcarvalho/miolo/config"
	"github.com/dfcarvalho/miolo/pkg/middleware"
	"github.com/dfcarvalho/miolo/pkg/routes/backfill"
	"github.com/dfcarvalho/miolo/pkg/routes/company"
	"github.com/dfcarvalho/miolo/pkg/routes/health"
	"github.com/dfcarvalho/miolo/pkg/routes/partner"
)

// Server wraps the echo instance with its configuration
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger ectologger.Logger
}

// New builds the HTTP server. The app context carries the registered
// dependencies the route handlers resolve per request.
func New(cfg *config.Config, logger ectologger.Logger, app context.Context, checker *health.Checker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Dependencies(app))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	api := e.Group("/api/v1")
	partner.Register(api.Group("/partners"))
	company.Register(api.Group("/companies"))
	backfill.Register(api.Group("/backfill"))

	checker.RegisterRoutes(e)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.WithFields(map[string]any{"addr": addr}).Info("Starting HTTP server")
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
