package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/household-assistant/internal/command"
	"example.com/household-assistant/internal/dates"
	"example.com/household-assistant/internal/models"
	"example.com/household-assistant/internal/notifications"
	"example.com/household-assistant/internal/repository"
)

const reminderPrefix = "Reminder: "

type Status string

const (
	StatusClient   Status = "client"
	StatusDone     Status = "done"
	StatusNotFound Status = "not_found"
	StatusInvalid  Status = "invalid"
	StatusFailed   Status = "failed"
)

// Store is the write side the dispatcher needs. Every call is scoped by the
// owning user.
type Store interface {
	CreateAppointment(ctx context.Context, appointment models.Appointment) (models.Appointment, error)
	MarkBillPaid(ctx context.Context, userID, billID uuid.UUID, paidDate time.Time) (models.Bill, error)
}

// Outcome describes what happened to a confirmed action. Client directives
// carry Route, URL or Phone and touch nothing on the server.
type Outcome struct {
	Status      Status              `json:"status"`
	Message     string              `json:"message"`
	Route       string              `json:"route,omitempty"`
	URL         string              `json:"url,omitempty"`
	Phone       string              `json:"phone,omitempty"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Bill        *models.Bill        `json:"bill,omitempty"`
}

type Dispatcher struct {
	store     Store
	publisher notifications.Publisher
	logger    *slog.Logger
	today     func() time.Time
}

// NewDispatcher создает исполнитель подтвержденных действий.
func NewDispatcher(store Store, publisher notifications.Publisher, logger *slog.Logger, today func() time.Time) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if today == nil {
		today = func() time.Time { return dates.Day(time.Now()) }
	}

	return &Dispatcher{
		store:     store,
		publisher: publisher,
		logger:    logger,
		today:     today,
	}
}

// Dispatch выполняет действие, подтвержденное пользователем. Метод тотален:
// любая ошибка превращается в Outcome с соответствующим статусом.
func (d *Dispatcher) Dispatch(ctx context.Context, userID uuid.UUID, action command.Action) Outcome {
	switch action.Type {
	case command.ActionNavigate:
		return navigate(action)
	case command.ActionOpenURL:
		return openURL(action)
	case command.ActionCall:
		return call(action)
	case command.ActionCreateReminder:
		return d.createReminder(ctx, userID, action)
	case command.ActionMarkBillPaid:
		return d.markBillPaid(ctx, userID, action)
	default:
		return invalid(fmt.Sprintf("Unknown action type %q.", action.Type))
	}
}

func navigate(action command.Action) Outcome {
	route := strings.TrimSpace(action.Payload["route"])
	if !strings.HasPrefix(route, "/") {
		return invalid("This action has no screen to open.")
	}
	return Outcome{Status: StatusClient, Message: "Opening " + route + ".", Route: route}
}

func openURL(action command.Action) Outcome {
	raw := strings.TrimSpace(action.Payload["url"])
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return invalid("This action has no valid link.")
	}
	return Outcome{Status: StatusClient, Message: "Opening the payment page.", URL: parsed.String()}
}

func call(action command.Action) Outcome {
	phone := command.DigitsOnly(action.Payload["phone"])
	if phone == "" {
		return invalid("This action has no phone number.")
	}
	return Outcome{Status: StatusClient, Message: "Calling " + phone + ".", Phone: "tel:" + phone}
}

func (d *Dispatcher) createReminder(ctx context.Context, userID uuid.UUID, action command.Action) Outcome {
	title := strings.TrimSpace(action.Payload["title"])
	if title == "" {
		return invalid("A reminder needs a title.")
	}

	date := d.today()
	if raw := strings.TrimSpace(action.Payload["date"]); raw != "" {
		parsed, err := dates.Parse(raw)
		if err != nil {
			return invalid("A reminder date must look like 2006-01-02.")
		}
		date = parsed
	}

	created, err := d.store.CreateAppointment(ctx, models.Appointment{
		UserID:          userID,
		Title:           reminderPrefix + title,
		AppointmentDate: date,
	})
	if err != nil {
		d.logger.Error("create reminder failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return Outcome{Status: StatusFailed, Message: "I couldn't save that reminder. Please try again."}
	}

	d.publish(userID, notifications.EventReminderCreated, created)
	return Outcome{
		Status:      StatusDone,
		Message:     fmt.Sprintf("Reminder set for %s.", dates.Format(created.AppointmentDate)),
		Appointment: &created,
	}
}

func (d *Dispatcher) markBillPaid(ctx context.Context, userID uuid.UUID, action command.Action) Outcome {
	billID, err := uuid.Parse(strings.TrimSpace(action.Payload["bill_id"]))
	if err != nil {
		return invalid("This action does not name a bill.")
	}

	bill, err := d.store.MarkBillPaid(ctx, userID, billID, d.today())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Outcome{Status: StatusNotFound, Message: "I couldn't find that bill. It may already be paid."}
		}
		d.logger.Error("mark bill paid failed",
			slog.String("user_id", userID.String()),
			slog.String("bill_id", billID.String()),
			slog.String("error", err.Error()),
		)
		return Outcome{Status: StatusFailed, Message: "I couldn't update that bill. Please try again."}
	}

	d.publish(userID, notifications.EventBillPaid, bill)
	return Outcome{
		Status:  StatusDone,
		Message: fmt.Sprintf("%s marked as paid.", bill.Name),
		Bill:    &bill,
	}
}

func (d *Dispatcher) publish(userID uuid.UUID, eventType string, data interface{}) {
	if d.publisher == nil {
		return
	}
	d.publisher.Publish(userID, notifications.Event{Type: eventType, Data: data})
}

func invalid(message string) Outcome {
	return Outcome{Status: StatusInvalid, Message: message}
}
