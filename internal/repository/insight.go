package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/household-assistant/internal/models"
)

type InsightRepository struct {
	db *pgxpool.Pool
}

// NewInsightRepository создает репозиторий инсайтов дашборда.
func NewInsightRepository(db *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{db: db}
}

// ListForDate возвращает все инсайты пользователя за день, включая скрытые.
func (r *InsightRepository) ListForDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.DashboardInsight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, insight_date, insight_type, title, body, cta_label, cta_route, source, dismissed, created_at
		 FROM dashboard_insights
		 WHERE user_id = $1 AND insight_date = $2
		 ORDER BY created_at, id`,
		userID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	insights := make([]models.DashboardInsight, 0)
	for rows.Next() {
		var insight models.DashboardInsight
		if err := scanInsight(rows, &insight); err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return insights, nil
}

// Upsert вставляет инсайт, если за этот день у пользователя еще нет инсайта
// с таким же заголовком. Возвращает признак того, что строка была вставлена.
func (r *InsightRepository) Upsert(ctx context.Context, insight models.DashboardInsight) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO dashboard_insights (user_id, insight_date, insight_type, title, body, cta_label, cta_route, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, insight_date, title) DO NOTHING`,
		insight.UserID,
		insight.InsightDate,
		insight.InsightType,
		insight.Title,
		insight.Body,
		insight.CTALabel,
		insight.CTARoute,
		insight.Source,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// Dismiss скрывает инсайт пользователя. Повторное скрытие не является ошибкой.
func (r *InsightRepository) Dismiss(ctx context.Context, userID, insightID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE dashboard_insights
		 SET dismissed = true
		 WHERE id = $1 AND user_id = $2`,
		insightID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// householdTables are the per-user tables that make a user eligible for the
// daily insight run.
var householdTables = []string{
	"bills",
	"transactions",
	"documents",
	"vehicles",
	"pets",
	"appointments",
	"insurance_policies",
	"medical_records",
	"service_contacts",
	"growth_records",
	"shopping_items",
}

func activeUsersQuery() string {
	exists := make([]string, 0, len(householdTables))
	for _, table := range householdTables {
		exists = append(exists, "EXISTS (SELECT 1 FROM "+table+" t WHERE t.user_id = u.id)")
	}
	return "SELECT u.id FROM users u WHERE " + strings.Join(exists, " OR ") + " ORDER BY u.created_at"
}

// ListUserIDs возвращает пользователей, у которых есть хоть какие-то данные
// хозяйства. Пустые аккаунты в фоновую генерацию не попадают.
func (r *InsightRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, activeUsersQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func scanInsight(row pgx.Row, i *models.DashboardInsight) error {
	return row.Scan(&i.ID, &i.UserID, &i.InsightDate, &i.InsightType, &i.Title, &i.Body, &i.CTALabel, &i.CTARoute,
		&i.Source, &i.Dismissed, &i.CreatedAt)
}
