package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/household-assistant/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	assistantHandler *handlers.AssistantHandler,
	commandHandler *handlers.CommandHandler,
	actionHandler *handlers.ActionHandler,
	insightHandler *handlers.InsightHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
	userRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1", authMiddleware)

	assistantGroup := api.Group("/assistant", aiRateLimiter)
	assistantGroup.POST("/messages", assistantHandler.Message)

	commands := api.Group("/commands", userRateLimiter)
	commands.POST("", commandHandler.Execute)
	commands.POST("/actions", actionHandler.Perform)

	insights := api.Group("/insights", userRateLimiter)
	insights.GET("/today", insightHandler.Today)
	insights.POST("/:id/dismiss", insightHandler.Dismiss)

	notifications := api.Group("/notifications")
	notifications.GET("/stream", notificationHandler.Stream)
}
