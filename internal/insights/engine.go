package insights

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/ai"
	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/metrics"
	"example.com/household-assistant/internal/models"
	"example.com/household-assistant/internal/notifications"
)

const (
	maxInsightsPerDay = 3
	maxAIDrafts       = 2
	lookbackDays      = 45
	appointmentDays   = 7
)

// Store persists dashboard insights. Upsert must ignore a row whose
// (user, date, title) already exists.
type Store interface {
	ListForDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.DashboardInsight, error)
	Upsert(ctx context.Context, insight models.DashboardInsight) (bool, error)
	Dismiss(ctx context.Context, userID, insightID uuid.UUID) error
}

// DataSource is the read side used to build the business snapshot.
type DataSource interface {
	ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error)
	ListAppointmentsFrom(ctx context.Context, userID uuid.UUID, from time.Time) ([]models.Appointment, error)
}

type Drafter interface {
	InsightDrafts(ctx context.Context, input ai.InsightInput) ([]ai.InsightDraft, error)
}

type Engine struct {
	store     Store
	data      DataSource
	drafter   Drafter
	publisher notifications.Publisher
	logger    *slog.Logger
	now       func() time.Time
	location  *time.Location
}

// NewEngine создает генератор ежедневных инсайтов. drafter может быть nil,
// тогда используются только правила.
func NewEngine(store Store, data DataSource, drafter Drafter, publisher notifications.Publisher, logger *slog.Logger, location *time.Location) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Engine{
		store:     store,
		data:      data,
		drafter:   drafter,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		location:  location,
	}
}

// WithClock подменяет источник текущего времени.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// UpsertForToday возвращает активные инсайты на сегодня, создавая их при
// первом вызове за день. Если за сегодня уже есть хоть одна строка, генерация
// не повторяется. Метод тотален: сбои сводятся к пустому списку.
func (e *Engine) UpsertForToday(ctx context.Context, userID uuid.UUID) []models.DashboardInsight {
	today := dates.Today(e.now(), e.location)

	existing, err := e.store.ListForDate(ctx, userID, today)
	if err != nil {
		e.warn("insights read failed", userID, err)
		return []models.DashboardInsight{}
	}
	if len(existing) > 0 {
		return active(existing)
	}

	snapshot := e.snapshot(ctx, userID, today)
	drafts := Merge(RuleDrafts(snapshot), e.aiDrafts(ctx, userID, snapshot))

	created := 0
	for _, draft := range drafts {
		inserted, err := e.store.Upsert(ctx, models.DashboardInsight{
			UserID:      userID,
			InsightDate: today,
			InsightType: draft.Type,
			Title:       draft.Title,
			Body:        draft.Body,
			CTALabel:    draft.CTALabel,
			CTARoute:    draft.CTARoute,
			Source:      draft.Source,
		})
		if err != nil {
			e.warn("insight upsert failed", userID, err)
			continue
		}
		if inserted {
			created++
			metrics.InsightsGenerated.WithLabelValues(string(draft.Source)).Inc()
		}
	}

	stored, err := e.store.ListForDate(ctx, userID, today)
	if err != nil {
		e.warn("insights re-read failed", userID, err)
		return []models.DashboardInsight{}
	}

	result := active(stored)
	if created > 0 && e.publisher != nil {
		e.publisher.Publish(userID, notifications.Event{Type: notifications.EventInsightsGenerated, Data: result})
	}
	return result
}

// Dismiss скрывает инсайт навсегда. Повторное скрытие не является ошибкой.
func (e *Engine) Dismiss(ctx context.Context, userID, insightID uuid.UUID) error {
	if err := e.store.Dismiss(ctx, userID, insightID); err != nil {
		return err
	}

	if e.publisher != nil {
		e.publisher.Publish(userID, notifications.Event{Type: notifications.EventInsightDismissed, Data: map[string]string{"id": insightID.String()}})
	}
	return nil
}

func (e *Engine) snapshot(ctx context.Context, userID uuid.UUID, today time.Time) Snapshot {
	bills, err := e.data.ListBills(ctx, userID)
	if err != nil {
		e.warn("insight bills read failed", userID, err)
		bills = nil
	}

	from := dates.AddDays(today, -lookbackDays)
	if monthStart := dates.MonthStart(today); monthStart.Before(from) {
		from = monthStart
	}
	transactions, err := e.data.ListTransactions(ctx, userID, from, today)
	if err != nil {
		e.warn("insight transactions read failed", userID, err)
		transactions = nil
	}

	snapshot := BuildSnapshot(today, bills, transactions)

	appointments, err := e.data.ListAppointmentsFrom(ctx, userID, today)
	if err != nil {
		e.warn("insight appointments read failed", userID, err)
		appointments = nil
	}
	weekEnd := dates.AddDays(today, appointmentDays)
	for _, appointment := range appointments {
		if dates.Between(appointment.AppointmentDate, today, weekEnd) {
			snapshot.UpcomingAppointments++
		}
	}

	return snapshot
}

func (e *Engine) aiDrafts(ctx context.Context, userID uuid.UUID, snapshot Snapshot) []Draft {
	if e.drafter == nil {
		return nil
	}

	input := ai.InsightInput{
		Today:           dates.Format(snapshot.Today),
		IncomeCents:     snapshot.IncomeCents,
		ExpenseCents:    snapshot.ExpenseCents,
		OverdueBills:    names(snapshot.Overdue),
		DueSoonBills:    names(snapshot.DueSoon),
		Last7DaysCents:  snapshot.Last7DaysCents,
		Prior7DaysCents: snapshot.Prior7DaysCents,
		TopCategories:   snapshot.TopCategories,
		Appointments:    snapshot.UpcomingAppointments,
		MaxInsights:     maxAIDrafts,
		AllowedTypes: []string{
			string(models.InsightTypeWin),
			string(models.InsightTypeWarning),
			string(models.InsightTypeTip),
			string(models.InsightTypeAction),
		},
	}
	for _, draft := range RuleDrafts(snapshot) {
		input.ExistingTitles = append(input.ExistingTitles, draft.Title)
	}

	ctx = ai.WithRequestInfo(ctx, userID, ai.RequestTypeInsights)
	generated, err := e.drafter.InsightDrafts(ctx, input)
	if err != nil {
		e.warn("insight drafts request failed", userID, err)
		return nil
	}

	drafts := make([]Draft, 0, len(generated))
	for i, draft := range generated {
		if i == maxAIDrafts {
			break
		}
		drafts = append(drafts, Draft{
			Type:     models.InsightType(draft.Type),
			Title:    draft.Title,
			Body:     draft.Body,
			CTALabel: draft.CTALabel,
			CTARoute: draft.CTARoute,
			Source:   models.InsightSourceAI,
		})
	}
	return drafts
}

// Merge объединяет черновики: первый заголовок побеждает, всего не больше трех.
func Merge(groups ...[]Draft) []Draft {
	seen := make(map[string]struct{})
	merged := make([]Draft, 0, maxInsightsPerDay)

	for _, group := range groups {
		for _, draft := range group {
			if len(merged) == maxInsightsPerDay {
				return merged
			}
			title := strings.TrimSpace(draft.Title)
			if title == "" {
				continue
			}
			if _, dup := seen[title]; dup {
				continue
			}
			seen[title] = struct{}{}
			draft.Title = title
			merged = append(merged, draft)
		}
	}
	return merged
}

func active(insights []models.DashboardInsight) []models.DashboardInsight {
	out := make([]models.DashboardInsight, 0, len(insights))
	for _, insight := range insights {
		if insight.Dismissed {
			continue
		}
		out = append(out, insight)
	}
	return out
}

func names(bills []models.Bill) []string {
	out := make([]string, 0, len(bills))
	for _, bill := range bills {
		out = append(out, bill.Name)
	}
	return out
}

func (e *Engine) warn(msg string, userID uuid.UUID, err error) {
	e.logger.Warn(msg,
		slog.String("user_id", userID.String()),
		slog.String("error", err.Error()),
	)
}
