package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/household-assistant/internal/actions"
	"example.com/household-assistant/internal/ai"
	"example.com/household-assistant/internal/assistant"
	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/config"
	"example.com/household-assistant/internal/handlers"
	"example.com/household-assistant/internal/household"
	"example.com/household-assistant/internal/insights"
	"example.com/household-assistant/internal/metrics"
	"example.com/household-assistant/internal/notifications"
	"example.com/household-assistant/internal/repository"
	"example.com/household-assistant/internal/scheduler"
)

// App bundles the HTTP router and the background scheduler that share one
// dependency graph.
type App struct {
	Echo      *echo.Echo
	Scheduler *scheduler.Scheduler
}

// New собирает HTTP-сервер Echo и планировщик с общими зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(requestMetrics())

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	householdRepo := repository.NewHouseholdRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	searchRepo := repository.NewSearchRepository(db)
	aiRepo := repository.NewAIRepository(db)
	notificationHub := notifications.NewHub()

	aiClient := newAIClient(cfg.AI, aiRepo, logger)

	builder := household.NewBuilder(householdRepo, logger, cfg.App.Location)
	toolbox := assistant.NewToolbox(householdRepo, notificationHub, logger)
	orchestrator := assistant.NewOrchestrator(aiClient, builder, toolbox, logger, cfg.AI.MaxToolRounds)
	dispatcher := actions.NewDispatcher(householdRepo, notificationHub, logger, builder.Today)

	var drafter insights.Drafter
	if cfg.AI.InsightDraftsEnabled {
		drafter = ai.NewService(aiClient)
	}
	engine := insights.NewEngine(insightRepo, householdRepo, drafter, notificationHub, logger, cfg.App.Location)

	jobs := scheduler.New(insightRepo, engine, logger, cfg.App.Location, cfg.Insights.RunTimeout)
	if cfg.Insights.Enabled {
		if err := jobs.ScheduleInsights(cfg.Insights.Schedule); err != nil {
			return nil, err
		}
	}

	registerRoutes(
		e,
		handlers.NewHealthHandler(db),
		handlers.NewAssistantHandler(orchestrator),
		handlers.NewCommandHandler(builder, searchRepo, logger),
		handlers.NewActionHandler(dispatcher),
		handlers.NewInsightHandler(engine),
		handlers.NewNotificationHandler(notificationHub),
		auth.JWTMiddleware(tokenManager),
		aiRateLimiter(cfg.AI),
		userRateLimiter(cfg.Auth),
	)

	return &App{Echo: e, Scheduler: jobs}, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// newAIClient выбирает провайдера и оборачивает его ограничителем нагрузки
// и журналом запросов.
func newAIClient(cfg config.AIConfig, log ai.RequestLogger, logger *slog.Logger) ai.Client {
	var provider ai.Client
	switch cfg.Provider {
	case config.ProviderGemini:
		provider = ai.NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	default:
		provider = ai.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	}

	throttled := ai.NewThrottledClient(provider, int64(cfg.MaxConcurrent), cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	return ai.NewRecordingClient(throttled, log, logger, cfg.Provider, cfg.Model)
}

// requestLogger пишет путь без query-строки: в ней может быть access_token.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURIPath:   true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// requestMetrics считает запросы по шаблону маршрута, а не по сырому URI,
// чтобы идентификаторы в пути не раздували число серий.
func requestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			method := c.Request().Method
			metrics.RequestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			metrics.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func userRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	return rateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	return rateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
}

// rateLimiter ограничивает частоту по пользователю из токена, а для
// анонимных запросов по IP.
func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID, ok := auth.UserIDFromContext(c); ok {
				return userID.String(), nil
			}
			return c.RealIP(), nil
		},
	})
}
