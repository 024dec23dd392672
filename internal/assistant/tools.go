package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai/jsonschema"

	"example.com/household-assistant/internal/ai"
	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/format"
	"example.com/household-assistant/internal/metrics"
	"example.com/household-assistant/internal/models"
	"example.com/household-assistant/internal/notifications"
	"example.com/household-assistant/internal/repository"
)

const (
	ToolAddReminder         = "add_reminder"
	ToolAddToList           = "add_to_list"
	ToolMarkPaid            = "mark_paid"
	ToolScheduleAppointment = "schedule_appointment"

	reminderPrefix = "Reminder: "
	timeLayout     = "15:04"

	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

// ToolStore is the store surface the tools write through. Every call is
// scoped by the owning user and is an independent statement.
type ToolStore interface {
	CreateAppointment(ctx context.Context, appointment models.Appointment) (models.Appointment, error)
	AddShoppingItem(ctx context.Context, userID uuid.UUID, name string) (models.ShoppingItem, error)
	ListBills(ctx context.Context, userID uuid.UUID) ([]models.Bill, error)
	MarkBillPaid(ctx context.Context, userID, billID uuid.UUID, paidDate time.Time) (models.Bill, error)
}

// Catalog returns the four tool declarations sent to the model on every round.
func Catalog() []ai.Tool {
	str := func(description string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.String, Description: description}
	}

	return []ai.Tool{
		{
			Name:        ToolAddReminder,
			Description: "Create a reminder on the household calendar.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title":         str("What to be reminded about."),
					"reminder_date": str("Date in YYYY-MM-DD format."),
					"reminder_time": str("Optional time in HH:MM 24-hour format."),
				},
				Required: []string{"title", "reminder_date"},
			},
		},
		{
			Name:        ToolAddToList,
			Description: "Add one item to the shopping list.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"item": str("The item to buy."),
				},
				Required: []string{"item"},
			},
		},
		{
			Name:        ToolMarkPaid,
			Description: "Mark a pending bill as paid today. Pass bill_id when known, otherwise a bill or provider name.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"bill_id":   str("Identifier of the bill."),
					"bill_name": str("Bill name or provider name."),
				},
			},
		},
		{
			Name:        ToolScheduleAppointment,
			Description: "Schedule an appointment on the household calendar.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title":            str("What the appointment is."),
					"appointment_date": str("Date in YYYY-MM-DD format."),
					"appointment_time": str("Optional time in HH:MM 24-hour format."),
					"location":         str("Optional location."),
				},
				Required: []string{"title", "appointment_date"},
			},
		},
	}
}

type addReminderArgs struct {
	Title        string `json:"title"`
	ReminderDate string `json:"reminder_date"`
	ReminderTime string `json:"reminder_time"`
}

type addToListArgs struct {
	Item string `json:"item"`
}

type markPaidArgs struct {
	BillID   string `json:"bill_id"`
	BillName string `json:"bill_name"`
}

type scheduleAppointmentArgs struct {
	Title           string `json:"title"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Location        string `json:"location"`
}

// Toolbox executes model tool calls. Run never returns an error: every
// failure becomes the text the model sees as the tool result.
type Toolbox struct {
	store     ToolStore
	publisher notifications.Publisher
	logger    *slog.Logger
}

// NewToolbox создает исполнитель инструментов модели.
func NewToolbox(store ToolStore, publisher notifications.Publisher, logger *slog.Logger) *Toolbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolbox{store: store, publisher: publisher, logger: logger}
}

// Known сообщает, объявлен ли инструмент в каталоге.
func Known(name string) bool {
	switch name {
	case ToolAddReminder, ToolAddToList, ToolMarkPaid, ToolScheduleAppointment:
		return true
	default:
		return false
	}
}

// Run выполняет один вызов инструмента и возвращает текстовый результат.
func (t *Toolbox) Run(ctx context.Context, userID uuid.UUID, today time.Time, call ai.ToolCall) string {
	var (
		text   string
		result string
	)

	switch call.Name {
	case ToolAddReminder:
		var args addReminderArgs
		decodeArgs(call.Arguments, &args)
		text, result = t.addReminder(ctx, userID, args)
	case ToolAddToList:
		var args addToListArgs
		decodeArgs(call.Arguments, &args)
		text, result = t.addToList(ctx, userID, args)
	case ToolMarkPaid:
		var args markPaidArgs
		decodeArgs(call.Arguments, &args)
		text, result = t.markPaid(ctx, userID, today, args)
	case ToolScheduleAppointment:
		var args scheduleAppointmentArgs
		decodeArgs(call.Arguments, &args)
		text, result = t.scheduleAppointment(ctx, userID, args)
	default:
		return fmt.Sprintf("Unknown tool %q. Available tools: %s, %s, %s, %s.", call.Name, ToolAddReminder, ToolAddToList, ToolMarkPaid, ToolScheduleAppointment)
	}

	metrics.ToolCalls.WithLabelValues(call.Name, result).Inc()
	return text
}

// decodeArgs falls back to the zero value, i.e. an empty argument object,
// when the model sends malformed or mistyped JSON.
func decodeArgs[T any](raw string, target *T) {
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		var zero T
		*target = zero
	}
}

func (t *Toolbox) addReminder(ctx context.Context, userID uuid.UUID, args addReminderArgs) (string, string) {
	title := strings.TrimSpace(args.Title)
	rawDate := strings.TrimSpace(args.ReminderDate)
	if title == "" || rawDate == "" {
		return "Cannot add reminder: both title and reminder_date are required.", resultRejected
	}

	date, err := dates.Parse(rawDate)
	if err != nil {
		return "Cannot add reminder: reminder_date must be in YYYY-MM-DD format.", resultRejected
	}
	clock, ok := parseClock(args.ReminderTime)
	if !ok {
		return "Cannot add reminder: reminder_time must be in HH:MM format.", resultRejected
	}

	created, err := t.store.CreateAppointment(ctx, models.Appointment{
		UserID:          userID,
		Title:           reminderPrefix + title,
		AppointmentDate: date,
		AppointmentTime: clock,
	})
	if err != nil {
		t.logFailure(userID, ToolAddReminder, err)
		return "Failed to add reminder: " + err.Error(), resultError
	}

	t.publish(userID, notifications.EventReminderCreated, created)
	return fmt.Sprintf("Added reminder %q on %s.", created.Title, dates.Format(created.AppointmentDate)), resultOK
}

func (t *Toolbox) addToList(ctx context.Context, userID uuid.UUID, args addToListArgs) (string, string) {
	item := strings.TrimSpace(args.Item)
	if item == "" {
		return "Cannot add to list: item is required.", resultRejected
	}

	created, err := t.store.AddShoppingItem(ctx, userID, item)
	if err != nil {
		t.logFailure(userID, ToolAddToList, err)
		return "Failed to add item: " + err.Error(), resultError
	}

	t.publish(userID, notifications.EventShoppingItemAdded, created)
	return fmt.Sprintf("Added %q to the shopping list.", created.Name), resultOK
}

func (t *Toolbox) markPaid(ctx context.Context, userID uuid.UUID, today time.Time, args markPaidArgs) (string, string) {
	bills, err := t.store.ListBills(ctx, userID)
	if err != nil {
		t.logFailure(userID, ToolMarkPaid, err)
		return "Failed to load bills: " + err.Error(), resultError
	}

	bill, ok := ResolveBill(bills, args.BillID, args.BillName)
	if !ok {
		return "Could not find a pending bill matching that request.", resultRejected
	}

	paid, err := t.store.MarkBillPaid(ctx, userID, bill.ID, today)
	if err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("Could not find pending bill %q; it may already be paid.", bill.Name), resultRejected
		}
		t.logFailure(userID, ToolMarkPaid, err)
		return "Failed to mark bill paid: " + err.Error(), resultError
	}

	t.publish(userID, notifications.EventBillPaid, paid)
	return fmt.Sprintf("Marked %q (%s) as paid on %s.", paid.Name, format.Money(paid.AmountCents), dates.Format(today)), resultOK
}

func (t *Toolbox) scheduleAppointment(ctx context.Context, userID uuid.UUID, args scheduleAppointmentArgs) (string, string) {
	title := strings.TrimSpace(args.Title)
	rawDate := strings.TrimSpace(args.AppointmentDate)
	if title == "" || rawDate == "" {
		return "Cannot schedule appointment: both title and appointment_date are required.", resultRejected
	}

	date, err := dates.Parse(rawDate)
	if err != nil {
		return "Cannot schedule appointment: appointment_date must be in YYYY-MM-DD format.", resultRejected
	}
	clock, ok := parseClock(args.AppointmentTime)
	if !ok {
		return "Cannot schedule appointment: appointment_time must be in HH:MM format.", resultRejected
	}

	created, err := t.store.CreateAppointment(ctx, models.Appointment{
		UserID:          userID,
		Title:           title,
		AppointmentDate: date,
		AppointmentTime: clock,
		Location:        strings.TrimSpace(args.Location),
	})
	if err != nil {
		t.logFailure(userID, ToolScheduleAppointment, err)
		return "Failed to schedule appointment: " + err.Error(), resultError
	}

	t.publish(userID, notifications.EventAppointmentAdded, created)
	return fmt.Sprintf("Scheduled %q on %s.", created.Title, dates.Format(created.AppointmentDate)), resultOK
}

// ResolveBill picks the bill a mark_paid call refers to: an explicit id
// first, then a name substring, then a provider substring. Name and provider
// lookups consider pending bills only; the first match in list order wins.
func ResolveBill(bills []models.Bill, billID, billName string) (models.Bill, bool) {
	if id, err := uuid.Parse(strings.TrimSpace(billID)); err == nil {
		for _, bill := range bills {
			if bill.ID == id {
				return bill, true
			}
		}
	}

	needle := strings.ToLower(strings.TrimSpace(billName))
	if needle == "" {
		return models.Bill{}, false
	}

	fields := []func(models.Bill) string{
		func(bill models.Bill) string { return bill.Name },
		func(bill models.Bill) string { return bill.Provider },
	}
	for _, field := range fields {
		for _, bill := range bills {
			if bill.Status != models.BillStatusPending {
				continue
			}
			if strings.Contains(strings.ToLower(field(bill)), needle) {
				return bill, true
			}
		}
	}

	return models.Bill{}, false
}

func parseClock(value string) (*string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, true
	}
	parsed, err := time.Parse(timeLayout, trimmed)
	if err != nil {
		return nil, false
	}
	clock := parsed.Format(timeLayout)
	return &clock, true
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func (t *Toolbox) publish(userID uuid.UUID, eventType string, data interface{}) {
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(userID, notifications.Event{Type: eventType, Data: data})
}

func (t *Toolbox) logFailure(userID uuid.UUID, tool string, err error) {
	t.logger.Warn("assistant tool failed",
		slog.String("user_id", userID.String()),
		slog.String("tool", tool),
		slog.String("error", err.Error()),
	)
}
