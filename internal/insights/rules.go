package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/format"
	"example.com/household-assistant/internal/models"
)

const (
	maxRuleInsights   = 3
	dueSoonDays       = 7
	spikeWindowDays   = 7
	quarterlyLookDays = 14
	topCategoryCount  = 3

	routeBills    = "/bills"
	routeSpending = "/spending"
	routeTaxes    = "/taxes"
)

// Draft is an insight before it is persisted.
type Draft struct {
	Type     models.InsightType
	Title    string
	Body     string
	CTALabel *string
	CTARoute *string
	Source   models.InsightSource
}

// Snapshot is the business view the rules run against. Amounts are cents.
type Snapshot struct {
	Today           time.Time
	IncomeCents     int64
	ExpenseCents    int64
	Overdue         []models.Bill
	DueSoon         []models.Bill
	Last7DaysCents  int64
	Prior7DaysCents int64
	// TopCategories lists this month's largest expense categories, biggest first.
	TopCategories []string
	// UpcomingAppointments is filled by the engine, not by BuildSnapshot.
	UpcomingAppointments int
}

// BuildSnapshot считает показатели месяца и двух последних недель.
func BuildSnapshot(today time.Time, bills []models.Bill, transactions []models.Transaction) Snapshot {
	snapshot := Snapshot{
		Today:   today,
		Overdue: make([]models.Bill, 0),
		DueSoon: make([]models.Bill, 0),
	}

	monthStart := dates.MonthStart(today)
	lastWeekStart := dates.AddDays(today, -(spikeWindowDays - 1))
	priorWeekStart := dates.AddDays(today, -(2*spikeWindowDays - 1))
	priorWeekEnd := dates.AddDays(today, -spikeWindowDays)
	byCategory := make(map[string]int64)

	for _, tx := range transactions {
		switch tx.TransactionType {
		case models.TransactionTypeIncome:
			if dates.Between(tx.TransactionDate, monthStart, today) {
				snapshot.IncomeCents += tx.AmountCents
			}
		case models.TransactionTypeExpense:
			if dates.Between(tx.TransactionDate, monthStart, today) {
				snapshot.ExpenseCents += tx.AmountCents
				if category := strings.TrimSpace(tx.Category); category != "" {
					byCategory[category] += tx.AmountCents
				}
			}
			if dates.Between(tx.TransactionDate, lastWeekStart, today) {
				snapshot.Last7DaysCents += tx.AmountCents
			}
			if dates.Between(tx.TransactionDate, priorWeekStart, priorWeekEnd) {
				snapshot.Prior7DaysCents += tx.AmountCents
			}
		}
	}

	snapshot.TopCategories = topCategories(byCategory, topCategoryCount)

	dueEnd := dates.AddDays(today, dueSoonDays)
	for _, bill := range bills {
		if bill.Status != models.BillStatusPending {
			continue
		}
		switch {
		case dates.Day(bill.DueDate).Before(today):
			snapshot.Overdue = append(snapshot.Overdue, bill)
		case dates.Between(bill.DueDate, today, dueEnd):
			snapshot.DueSoon = append(snapshot.DueSoon, bill)
		}
	}

	return snapshot
}

func topCategories(totals map[string]int64, limit int) []string {
	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]] != totals[categories[j]] {
			return totals[categories[i]] > totals[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > limit {
		categories = categories[:limit]
	}
	return categories
}

type rule func(Snapshot) (Draft, bool)

// rules run in this order and each yields at most one draft.
var rules = []rule{
	overdueRule,
	dueThisWeekRule,
	spendSpikeRule,
	profitabilityRule,
	quarterlyEstimateRule,
}

// RuleDrafts прогоняет правила по порядку и оставляет не больше трех.
func RuleDrafts(snapshot Snapshot) []Draft {
	drafts := make([]Draft, 0, maxRuleInsights)
	for _, r := range rules {
		if draft, ok := r(snapshot); ok {
			drafts = append(drafts, draft)
		}
		if len(drafts) == maxRuleInsights {
			break
		}
	}
	return drafts
}

func overdueRule(s Snapshot) (Draft, bool) {
	if len(s.Overdue) == 0 {
		return Draft{}, false
	}
	return Draft{
		Type:     models.InsightTypeWarning,
		Title:    fmt.Sprintf("%s overdue", format.Count(len(s.Overdue), "bill", "bills")),
		Body:     fmt.Sprintf("%s past due, totaling %s.", billNames(s.Overdue), format.Money(sumBills(s.Overdue))),
		CTALabel: ptr("View bills"),
		CTARoute: ptr(routeBills),
		Source:   models.InsightSourceRule,
	}, true
}

func dueThisWeekRule(s Snapshot) (Draft, bool) {
	if len(s.DueSoon) == 0 {
		return Draft{}, false
	}
	return Draft{
		Type:     models.InsightTypeAction,
		Title:    fmt.Sprintf("%s due this week", format.Count(len(s.DueSoon), "bill", "bills")),
		Body:     fmt.Sprintf("%s due in the next %d days, totaling %s.", billNames(s.DueSoon), dueSoonDays, format.Money(sumBills(s.DueSoon))),
		CTALabel: ptr("View bills"),
		CTARoute: ptr(routeBills),
		Source:   models.InsightSourceRule,
	}, true
}

// spendSpikeRule fires when the trailing week exceeds 1.25 times the week
// before it, compared in integer cents as cur*4 > prev*5.
func spendSpikeRule(s Snapshot) (Draft, bool) {
	if s.Prior7DaysCents <= 0 || s.Last7DaysCents*4 <= s.Prior7DaysCents*5 {
		return Draft{}, false
	}

	increase := (s.Last7DaysCents - s.Prior7DaysCents) * 100 / s.Prior7DaysCents
	return Draft{
		Type:     models.InsightTypeWarning,
		Title:    "Spending is up this week",
		Body:     fmt.Sprintf("You spent %s in the last 7 days, %d%% more than the %s the week before.", format.Money(s.Last7DaysCents), increase, format.Money(s.Prior7DaysCents)),
		CTALabel: ptr("View spending"),
		CTARoute: ptr(routeSpending),
		Source:   models.InsightSourceRule,
	}, true
}

func profitabilityRule(s Snapshot) (Draft, bool) {
	if s.IncomeCents <= 0 || s.IncomeCents <= s.ExpenseCents {
		return Draft{}, false
	}
	return Draft{
		Type:     models.InsightTypeWin,
		Title:    "Income ahead of expenses",
		Body:     fmt.Sprintf("This month you brought in %s and spent %s, leaving %s.", format.Money(s.IncomeCents), format.Money(s.ExpenseCents), format.Money(s.IncomeCents-s.ExpenseCents)),
		CTALabel: ptr("View spending"),
		CTARoute: ptr(routeSpending),
		Source:   models.InsightSourceRule,
	}, true
}

func quarterlyEstimateRule(s Snapshot) (Draft, bool) {
	due, ok := NextQuarterlyDue(s.Today)
	if !ok {
		return Draft{}, false
	}

	days := int(due.Sub(dates.Day(s.Today)).Hours() / 24)
	when := "today"
	if days > 0 {
		when = "in " + format.Count(days, "day", "days")
	}

	return Draft{
		Type:     models.InsightTypeAction,
		Title:    "Quarterly estimated tax due " + format.Date(due),
		Body:     fmt.Sprintf("Your quarterly estimated tax payment is due %s. Set the money aside now.", when),
		CTALabel: ptr("Add reminder"),
		CTARoute: ptr(routeTaxes),
		Source:   models.InsightSourceRule,
	}, true
}

// NextQuarterlyDue возвращает ближайший квартальный срок (15 января, апреля,
// июня и сентября), если до него не больше 14 дней.
func NextQuarterlyDue(today time.Time) (time.Time, bool) {
	day := dates.Day(today)
	year := day.Year()
	deadlines := []time.Time{
		time.Date(year, time.January, 15, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.April, 15, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.September, 15, 0, 0, 0, 0, time.UTC),
	}

	limit := dates.AddDays(day, quarterlyLookDays)
	for _, deadline := range deadlines {
		if dates.Between(deadline, day, limit) {
			return deadline, true
		}
	}
	return time.Time{}, false
}

func sumBills(bills []models.Bill) int64 {
	var total int64
	for _, bill := range bills {
		total += bill.AmountCents
	}
	return total
}

func billNames(bills []models.Bill) string {
	const shown = 3
	names := make([]string, 0, shown)
	for i, bill := range bills {
		if i == shown {
			break
		}
		names = append(names, bill.Name)
	}

	label := strings.Join(names, ", ")
	if extra := len(bills) - len(names); extra > 0 {
		label += fmt.Sprintf(" and %d more", extra)
	}
	if len(bills) == 1 {
		return label + " is"
	}
	return label + " are"
}

func ptr(value string) *string {
	return &value
}
