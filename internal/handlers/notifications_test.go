package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/household-assistant/internal/auth"
	"example.com/household-assistant/internal/notifications"
)

type channelSubscriber struct {
	ch           chan notifications.Event
	subscribed   chan uuid.UUID
	unsubscribed chan struct{}
}

func (s *channelSubscriber) Subscribe(userID uuid.UUID) (<-chan notifications.Event, func()) {
	s.subscribed <- userID
	return s.ch, func() { close(s.unsubscribed) }
}

// TestStreamDeliversEvents проверяет SSE-поток: приветствие, событие и
// отписку после закрытия соединения.
func TestStreamDeliversEvents(t *testing.T) {
	subscriber := &channelSubscriber{
		ch:           make(chan notifications.Event),
		subscribed:   make(chan uuid.UUID, 1),
		unsubscribed: make(chan struct{}),
	}
	handler := NewNotificationHandler(subscriber)
	userID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(auth.ContextUserIDKey, userID)

	done := make(chan error, 1)
	go func() {
		done <- handler.Stream(c)
	}()

	assert.Equal(t, userID, <-subscriber.subscribed)

	// The channel is unbuffered, so the send returns once the stream has
	// taken the event.
	subscriber.ch <- notifications.Event{Type: notifications.EventBillPaid, Data: map[string]string{"name": "Water"}}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancel")
	}

	select {
	case <-subscriber.unsubscribed:
	default:
		t.Fatal("stream did not unsubscribe")
	}

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, "event: bill_paid\n")
	assert.Contains(t, body, `"name":"Water"`)
}

// TestStreamRequiresUser проверяет отказ без пользователя в контексте.
func TestStreamRequiresUser(t *testing.T) {
	handler := NewNotificationHandler(notifications.NewHub())

	c, rec := newContext(t, http.MethodGet, "/", "", nil)
	require.NoError(t, handler.Stream(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
