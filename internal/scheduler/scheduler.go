package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"example.com/household-assistant/internal/models"
)

// UserLister enumerates the users that get daily insights.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// InsightRunner generates today's insights for one user.
type InsightRunner interface {
	UpsertForToday(ctx context.Context, userID uuid.UUID) []models.DashboardInsight
}

// Scheduler runs the daily insight job.
type Scheduler struct {
	cron     *cron.Cron
	users    UserLister
	insights InsightRunner
	logger   *slog.Logger
	timeout  time.Duration
}

// New создает планировщик в часовом поясе приложения.
func New(users UserLister, insights InsightRunner, logger *slog.Logger, location *time.Location, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}

	cronLog := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		users:    users,
		insights: insights,
		logger:   logger,
		timeout:  timeout,
	}
}

// ScheduleInsights регистрирует ежедневную генерацию инсайтов по расписанию
// в стандартном cron-формате.
func (s *Scheduler) ScheduleInsights(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		s.RunInsights(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule insights %q: %w", spec, err)
	}
	return nil
}

// RunInsights генерирует инсайты для всех пользователей по очереди и
// возвращает число обработанных пользователей.
func (s *Scheduler) RunInsights(ctx context.Context) int {
	started := time.Now()

	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("list users for insights", slog.String("error", err.Error()))
		return 0
	}

	processed := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			s.logger.Warn("insight run interrupted",
				slog.Int("processed", processed),
				slog.Int("total", len(userIDs)),
			)
			break
		}

		insights := s.insights.UpsertForToday(ctx, userID)
		processed++
		s.logger.Debug("insights ready", slog.String("user_id", userID.String()), slog.Int("count", len(insights)))
	}

	s.logger.Info("insight run completed",
		slog.Int("users", processed),
		slog.Duration("elapsed", time.Since(started)),
	)
	return processed
}

// Start запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err.Error())...)
}
