package household

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/metrics"
	"example.com/household-assistant/internal/models"
)

const uncategorized = "other"

// Source is the read side of the store the builder needs. Every method is
// scoped by the owning user.
type Source interface {
	ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
	ListVehicles(ctx context.Context, userID uuid.UUID) ([]models.Vehicle, error)
	ListPets(ctx context.Context, userID uuid.UUID) ([]models.Pet, error)
	ListAppointmentsFrom(ctx context.Context, userID uuid.UUID, from time.Time) ([]models.Appointment, error)
	ListInsurancePolicies(ctx context.Context, userID uuid.UUID) ([]models.InsurancePolicy, error)
	ListMedicalRecords(ctx context.Context, userID uuid.UUID) ([]models.MedicalRecord, error)
	ListServiceContacts(ctx context.Context, userID uuid.UUID) ([]models.ServiceContact, error)
	ListGrowthRecords(ctx context.Context, userID uuid.UUID) ([]models.GrowthRecord, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Transaction, error)
	ListShoppingItems(ctx context.Context, userID uuid.UUID) ([]models.ShoppingItem, error)
}

type CategoryTotal struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
}

type Spending struct {
	TotalCents int64           `json:"total_cents"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Context is a per-request snapshot of one user's household. It is built
// fresh for every turn and must not be mutated after Build returns.
type Context struct {
	UserID            uuid.UUID                `json:"user_id"`
	Today             time.Time                `json:"today"`
	Bills             []models.Bill            `json:"bills"`
	Vehicles          []models.Vehicle         `json:"vehicles"`
	Pets              []models.Pet             `json:"pets"`
	Appointments      []models.Appointment     `json:"appointments"`
	InsurancePolicies []models.InsurancePolicy `json:"insurance_policies"`
	MedicalRecords    []models.MedicalRecord   `json:"medical_records"`
	ServiceContacts   []models.ServiceContact  `json:"service_contacts"`
	GrowthRecords     []models.GrowthRecord    `json:"growth_records"`
	MonthlySpending   Spending                 `json:"monthly_spending"`
	LastMonthSpending Spending                 `json:"last_month_spending"`
	ShoppingList      []string                 `json:"shopping_list"`
}

type Builder struct {
	source   Source
	logger   *slog.Logger
	now      func() time.Time
	location *time.Location
}

// NewBuilder создает сборщик снимка домохозяйства.
func NewBuilder(source Source, logger *slog.Logger, location *time.Location) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Builder{
		source:   source,
		logger:   logger,
		now:      time.Now,
		location: location,
	}
}

// WithClock подменяет источник текущего времени.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Today возвращает текущий день в зоне приложения.
func (b *Builder) Today() time.Time {
	return dates.Today(b.now(), b.location)
}

// Build читает данные пользователя по категориям. Ошибка чтения одной
// категории превращается в пустой список и не прерывает сборку.
func (b *Builder) Build(ctx context.Context, userID uuid.UUID) Context {
	today := b.Today()
	hc := Context{UserID: userID, Today: today}

	hc.Bills = readCategory(ctx, b, userID, "bills", b.source.ListBills)
	hc.Vehicles = readCategory(ctx, b, userID, "vehicles", b.source.ListVehicles)
	hc.Pets = readCategory(ctx, b, userID, "pets", b.source.ListPets)
	hc.Appointments = readCategory(ctx, b, userID, "appointments", func(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
		return b.source.ListAppointmentsFrom(ctx, userID, today)
	})
	hc.InsurancePolicies = readCategory(ctx, b, userID, "insurance", b.source.ListInsurancePolicies)
	hc.MedicalRecords = readCategory(ctx, b, userID, "medical_records", b.source.ListMedicalRecords)
	hc.ServiceContacts = readCategory(ctx, b, userID, "service_contacts", b.source.ListServiceContacts)
	hc.GrowthRecords = readCategory(ctx, b, userID, "growth_records", b.source.ListGrowthRecords)

	monthStart := dates.MonthStart(today)
	monthEnd := monthStart.AddDate(0, 1, -1)
	current := readCategory(ctx, b, userID, "spending", func(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
		return b.source.ListTransactions(ctx, userID, monthStart, monthEnd)
	})
	hc.MonthlySpending = SummarizeSpending(current, monthStart, monthEnd)

	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.AddDate(0, 0, -1)
	previous := readCategory(ctx, b, userID, "last_month_spending", func(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
		return b.source.ListTransactions(ctx, userID, lastMonthStart, lastMonthEnd)
	})
	hc.LastMonthSpending = SummarizeSpending(previous, lastMonthStart, lastMonthEnd)

	items := readCategory(ctx, b, userID, "shopping_list", b.source.ListShoppingItems)
	hc.ShoppingList = make([]string, 0, len(items))
	for _, item := range items {
		if item.Checked {
			continue
		}
		hc.ShoppingList = append(hc.ShoppingList, item.Name)
	}

	hc.Appointments = upcomingAppointments(hc.Appointments, today)
	return hc
}

func readCategory[T any](ctx context.Context, b *Builder, userID uuid.UUID, category string, read func(context.Context, uuid.UUID) ([]T, error)) []T {
	rows, err := read(ctx, userID)
	if err != nil {
		metrics.ContextReadFailures.WithLabelValues(category).Inc()
		b.logger.Warn("household context read failed",
			slog.String("category", category),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if rows == nil {
		return []T{}
	}
	return rows
}

// SummarizeSpending суммирует расходы по категориям за период [from, to].
func SummarizeSpending(transactions []models.Transaction, from, to time.Time) Spending {
	totals := make(map[string]int64)
	var total int64

	for _, tx := range transactions {
		if tx.TransactionType != models.TransactionTypeExpense {
			continue
		}
		if !dates.Between(tx.TransactionDate, from, to) {
			continue
		}

		category := strings.TrimSpace(tx.Category)
		if category == "" {
			category = uncategorized
		}
		totals[category] += tx.AmountCents
		total += tx.AmountCents
	}

	byCategory := make([]CategoryTotal, 0, len(totals))
	for category, cents := range totals {
		byCategory = append(byCategory, CategoryTotal{Category: category, TotalCents: cents})
	}
	sort.Slice(byCategory, func(i, j int) bool {
		return byCategory[i].Category < byCategory[j].Category
	})

	return Spending{TotalCents: total, ByCategory: byCategory}
}

// upcomingAppointments keeps today-or-later entries ordered by date, then
// time with missing times last.
func upcomingAppointments(appointments []models.Appointment, today time.Time) []models.Appointment {
	out := make([]models.Appointment, 0, len(appointments))
	for _, appointment := range appointments {
		if dates.Day(appointment.AppointmentDate).Before(today) {
			continue
		}
		out = append(out, appointment)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dates.Day(out[i].AppointmentDate), dates.Day(out[j].AppointmentDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		ti, tj := out[i].AppointmentTime, out[j].AppointmentTime
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return *ti < *tj
		}
	})

	return out
}
