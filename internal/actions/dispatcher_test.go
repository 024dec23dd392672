package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/household-assistant/internal/command"
	"example.com/household-assistant/internal/models"
	"example.com/household-assistant/internal/notifications"
	"example.com/household-assistant/internal/repository"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	appointments []models.Appointment
	bills        map[uuid.UUID]models.Bill
	paidDates    []time.Time
	err          error
}

func (s *fakeStore) CreateAppointment(_ context.Context, appointment models.Appointment) (models.Appointment, error) {
	if s.err != nil {
		return models.Appointment{}, s.err
	}
	appointment.ID = uuid.New()
	s.appointments = append(s.appointments, appointment)
	return appointment, nil
}

func (s *fakeStore) MarkBillPaid(_ context.Context, userID, billID uuid.UUID, paidDate time.Time) (models.Bill, error) {
	if s.err != nil {
		return models.Bill{}, s.err
	}
	bill, ok := s.bills[billID]
	if !ok || bill.UserID != userID || bill.Status != models.BillStatusPending {
		return models.Bill{}, repository.ErrNotFound
	}
	bill.Status = models.BillStatusPaid
	bill.PaidDate = &paidDate
	amount := bill.AmountCents
	bill.PaidAmountCents = &amount
	s.bills[billID] = bill
	s.paidDates = append(s.paidDates, paidDate)
	return bill, nil
}

type recordingPublisher struct {
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, event notifications.Event) {
	p.events = append(p.events, event)
}

func newTestDispatcher(store Store, publisher notifications.Publisher) *Dispatcher {
	return NewDispatcher(store, publisher, nil, func() time.Time { return testToday })
}

// TestDispatchClientDirectives проверяет действия, исполняемые на клиенте.
func TestDispatchClientDirectives(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, nil)
	userID := uuid.New()

	outcome := d.Dispatch(context.Background(), userID, command.Action{Type: command.ActionNavigate, Payload: map[string]string{"route": "/bills"}})
	assert.Equal(t, StatusClient, outcome.Status)
	assert.Equal(t, "/bills", outcome.Route)

	outcome = d.Dispatch(context.Background(), userID, command.Action{Type: command.ActionOpenURL, Payload: map[string]string{"url": "https://pay.example.com/x"}})
	assert.Equal(t, StatusClient, outcome.Status)
	assert.Equal(t, "https://pay.example.com/x", outcome.URL)

	outcome = d.Dispatch(context.Background(), userID, command.Action{Type: command.ActionCall, Payload: map[string]string{"phone": "(555) 123-4567"}})
	assert.Equal(t, StatusClient, outcome.Status)
	assert.Equal(t, "tel:5551234567", outcome.Phone)

	assert.Empty(t, store.appointments)
}

// TestDispatchRejectsBadPayloads проверяет отказ для некорректных данных.
func TestDispatchRejectsBadPayloads(t *testing.T) {
	d := newTestDispatcher(&fakeStore{}, nil)
	userID := uuid.New()

	cases := []command.Action{
		{Type: command.ActionNavigate, Payload: map[string]string{"route": "bills"}},
		{Type: command.ActionOpenURL, Payload: map[string]string{"url": "javascript:alert(1)"}},
		{Type: command.ActionOpenURL},
		{Type: command.ActionCall, Payload: map[string]string{"phone": "call me"}},
		{Type: command.ActionCreateReminder, Payload: map[string]string{"title": "  "}},
		{Type: command.ActionCreateReminder, Payload: map[string]string{"title": "x", "date": "tomorrow"}},
		{Type: command.ActionMarkBillPaid, Payload: map[string]string{"bill_id": "netflix"}},
		{Type: "launch_rocket"},
	}

	for _, action := range cases {
		outcome := d.Dispatch(context.Background(), userID, action)
		assert.Equal(t, StatusInvalid, outcome.Status, "action %+v", action)
		assert.NotEmpty(t, outcome.Message)
	}
}

// TestDispatchCreateReminder проверяет создание напоминания и событие.
func TestDispatchCreateReminder(t *testing.T) {
	store := &fakeStore{}
	publisher := &recordingPublisher{}
	d := newTestDispatcher(store, publisher)
	userID := uuid.New()

	outcome := d.Dispatch(context.Background(), userID, command.Action{
		Type:    command.ActionCreateReminder,
		Payload: map[string]string{"title": "Call the dentist", "date": "2026-03-11"},
	})

	require.Equal(t, StatusDone, outcome.Status)
	require.Len(t, store.appointments, 1)
	assert.Equal(t, "Reminder: Call the dentist", store.appointments[0].Title)
	assert.Equal(t, userID, store.appointments[0].UserID)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), store.appointments[0].AppointmentDate)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, notifications.EventReminderCreated, publisher.events[0].Type)
}

// TestDispatchCreateReminderDefaultsToToday проверяет дату по умолчанию.
func TestDispatchCreateReminderDefaultsToToday(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(store, nil)

	outcome := d.Dispatch(context.Background(), uuid.New(), command.Action{
		Type:    command.ActionCreateReminder,
		Payload: map[string]string{"title": "Water plants"},
	})

	require.Equal(t, StatusDone, outcome.Status)
	assert.Equal(t, testToday, store.appointments[0].AppointmentDate)
}

// TestDispatchMarkBillPaid проверяет оплату и повторную отметку.
func TestDispatchMarkBillPaid(t *testing.T) {
	userID := uuid.New()
	bill := models.Bill{ID: uuid.New(), UserID: userID, Name: "Netflix", AmountCents: 1599, Status: models.BillStatusPending}
	store := &fakeStore{bills: map[uuid.UUID]models.Bill{bill.ID: bill}}
	publisher := &recordingPublisher{}
	d := newTestDispatcher(store, publisher)

	action := command.Action{Type: command.ActionMarkBillPaid, Payload: map[string]string{"bill_id": bill.ID.String()}}

	outcome := d.Dispatch(context.Background(), userID, action)
	require.Equal(t, StatusDone, outcome.Status)
	require.NotNil(t, outcome.Bill)
	assert.Equal(t, models.BillStatusPaid, outcome.Bill.Status)
	require.NotNil(t, outcome.Bill.PaidAmountCents)
	assert.Equal(t, int64(1599), *outcome.Bill.PaidAmountCents)
	assert.Equal(t, []time.Time{testToday}, store.paidDates)

	again := d.Dispatch(context.Background(), userID, action)
	assert.Equal(t, StatusNotFound, again.Status)
	assert.Len(t, publisher.events, 1)
}

// TestDispatchMarkBillPaidOtherUser проверяет изоляцию пользователей.
func TestDispatchMarkBillPaidOtherUser(t *testing.T) {
	bill := models.Bill{ID: uuid.New(), UserID: uuid.New(), Name: "Rent", Status: models.BillStatusPending}
	d := newTestDispatcher(&fakeStore{bills: map[uuid.UUID]models.Bill{bill.ID: bill}}, nil)

	outcome := d.Dispatch(context.Background(), uuid.New(), command.Action{
		Type:    command.ActionMarkBillPaid,
		Payload: map[string]string{"bill_id": bill.ID.String()},
	})
	assert.Equal(t, StatusNotFound, outcome.Status)
}

// TestDispatchStoreFailure проверяет, что ошибка хранилища не выходит наружу.
func TestDispatchStoreFailure(t *testing.T) {
	publisher := &recordingPublisher{}
	d := newTestDispatcher(&fakeStore{err: errors.New("connection reset")}, publisher)

	outcome := d.Dispatch(context.Background(), uuid.New(), command.Action{
		Type:    command.ActionCreateReminder,
		Payload: map[string]string{"title": "Renew passport"},
	})
	assert.Equal(t, StatusFailed, outcome.Status)

	outcome = d.Dispatch(context.Background(), uuid.New(), command.Action{
		Type:    command.ActionMarkBillPaid,
		Payload: map[string]string{"bill_id": uuid.NewString()},
	})
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Empty(t, publisher.events)
}
