package command

import (
	"time"

	"example.com/household-assistant/internal/household"
	"example.com/household-assistant/internal/models"
)

type Intent string

type ActionType string

const (
	IntentBillsDueWeek    Intent = "bills_due_week"
	IntentShoeSize        Intent = "shoe_size"
	IntentAddReminder     Intent = "add_reminder"
	IntentSpendingSummary Intent = "spending_summary"
	IntentRegistrationDue Intent = "registration_due"
	IntentCallContact     Intent = "call_contact"
	IntentPayBill         Intent = "pay_bill"
	IntentMarkBillPaid    Intent = "mark_bill_paid"
	IntentSearch          Intent = "search"
)

const (
	EntityPerson      = "person"
	EntityCategory    = "category"
	EntityPeriod      = "period"
	EntityContactType = "contact_type"
	EntityBillName    = "bill_name"
	EntityTitle       = "title"
	EntityWhen        = "when"
	EntityQuery       = "query"
)

const (
	PeriodThisMonth = "this_month"
	PeriodLastMonth = "last_month"

	WhenToday    = "today"
	WhenTomorrow = "tomorrow"
	WhenNextWeek = "next_week"
)

const (
	ActionNavigate       ActionType = "navigate"
	ActionOpenURL        ActionType = "open_url"
	ActionCall           ActionType = "call"
	ActionCreateReminder ActionType = "create_reminder"
	ActionMarkBillPaid   ActionType = "mark_bill_paid"
)

const maxActions = 3

// Intents lists the closed set of intents in no particular order.
var Intents = []Intent{
	IntentBillsDueWeek,
	IntentShoeSize,
	IntentAddReminder,
	IntentSpendingSummary,
	IntentRegistrationDue,
	IntentCallContact,
	IntentPayBill,
	IntentMarkBillPaid,
	IntentSearch,
}

// ParsedCommand is the classification of one query. A missing key in
// Entities means the slot was not extracted.
type ParsedCommand struct {
	Intent   Intent            `json:"intent"`
	Entities map[string]string `json:"entities"`
}

// Entity возвращает значение слота и признак его наличия.
func (p ParsedCommand) Entity(name string) (string, bool) {
	value, ok := p.Entities[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

type Action struct {
	Label   string            `json:"label"`
	Type    ActionType        `json:"type"`
	Payload map[string]string `json:"payload"`
}

type Result struct {
	Answer  string   `json:"answer"`
	Actions []Action `json:"actions"`
}

// Data is everything the executor may consult. It is a read-only view; the
// executor never writes to the store.
type Data struct {
	Today         time.Time
	Bills         []models.Bill
	GrowthRecords []models.GrowthRecord
	Vehicles      []models.Vehicle
	Contacts      []models.ServiceContact
	ThisMonth     household.Spending
	LastMonth     household.Spending
}

// NewData собирает данные исполнителя из снимка домохозяйства.
func NewData(hc household.Context) Data {
	return Data{
		Today:         hc.Today,
		Bills:         hc.Bills,
		GrowthRecords: hc.GrowthRecords,
		Vehicles:      hc.Vehicles,
		Contacts:      hc.ServiceContacts,
		ThisMonth:     hc.MonthlySpending,
		LastMonth:     hc.LastMonthSpending,
	}
}

func (d Data) spending(period string) household.Spending {
	if period == PeriodLastMonth {
		return d.LastMonth
	}
	return d.ThisMonth
}
