// Package server exposes the turn pipeline over HTTP.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/hrdesk/config"
	"github.com/mohammad-safakhou/hrdesk/internal/conversation"
	"github.com/mohammad-safakhou/hrdesk/internal/rag/index"
	"github.com/mohammad-safakhou/hrdesk/internal/store"
	"github.com/mohammad-safakhou/hrdesk/internal/telemetry"
)

// Deps carries the wired system into the HTTP layer. Audit may be nil when
// Postgres is not configured.
type Deps struct {
	Engine        TurnProcessor
	Conversations conversation.Store
	Index         *index.Manager
	Audit         *store.Store
	Metrics       *telemetry.Metrics
}

// Run blocks serving the API until the listener fails.
func Run(cfg *config.Config, deps Deps) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		if deps.Index != nil && deps.Index.Size() == 0 {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "index not ready"})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := e.Group("/api")
	if cfg.Server.JWTSecret != "" {
		api.Use(authMiddleware([]byte(cfg.Server.JWTSecret)))
	}

	ch := &ChatHandler{
		Engine:        deps.Engine,
		Conversations: deps.Conversations,
		Audit:         deps.Audit,
		Logger:        log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
	ch.Register(api)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	baseLogger.Printf("listening on %s", addr)
	return e.Start(addr)
}
