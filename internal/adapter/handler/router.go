package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/meeting-bot/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-bot/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg        *config.Config
	botHandler *Bot
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, botHandler *Bot) *Router {
	return &Router{
		cfg:        cfg,
		botHandler: botHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	if rt.cfg != nil && rt.cfg.Server.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	rt.setupBotRoutes(e)
}

// setupBotRoutes configures session lifecycle routes
func (rt *Router) setupBotRoutes(e *echo.Echo) {
	if rt.botHandler == nil {
		e.POST("/join", rt.notImplemented)
		e.POST("/leave", rt.notImplemented)
		return
	}

	e.POST("/join", rt.botHandler.Join)
	e.POST("/leave", rt.botHandler.Leave)
	e.GET("/sessions", rt.botHandler.ListSessions)
	e.GET("/sessions/:id", rt.botHandler.GetSession)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{Status: "ok"}
	if rt.cfg != nil {
		resp.Environment = rt.cfg.Server.Environment
	}
	if rt.botHandler != nil {
		resp.ActiveSessions = len(rt.botHandler.svc.ListSessions(c.Request().Context()))
	}
	return c.JSON(http.StatusOK, resp)
}
