package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erensaridag/careermatch/internal/core/events"
)

// EventHandler turns application events into notification log lines. A real
// mail or push integration would hang off these same subscriptions.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleApplicationSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.ApplicationSubmittedEvent)
	if !ok {
		h.logger.Error("invalid event type for application submitted handler", "event_type", event.EventType())
		return fmt.Errorf("expected ApplicationSubmittedEvent, got %T", event)
	}

	h.logger.Info("new application notification",
		"application_id", submitted.ApplicationID,
		"student_id", submitted.StudentID,
		"internship_title", submitted.InternshipTitle,
		"company_name", submitted.CompanyName,
		"event_id", submitted.EventID())

	return nil
}

func (h *EventHandler) HandleStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.ApplicationStatusChangedEvent)
	if !ok {
		h.logger.Error("invalid event type for status changed handler", "event_type", event.EventType())
		return fmt.Errorf("expected ApplicationStatusChangedEvent, got %T", event)
	}

	h.logger.Info("application decision notification",
		"application_id", changed.ApplicationID,
		"student_id", changed.StudentID,
		"old_status", changed.OldStatus,
		"new_status", changed.NewStatus,
		"event_id", changed.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeApplicationSubmitted, h.HandleApplicationSubmitted)
	eventBus.Subscribe(events.EventTypeApplicationStatusChanged, h.HandleStatusChanged)

	h.logger.Info("application event handlers registered",
		"handlers", []string{events.EventTypeApplicationSubmitted, events.EventTypeApplicationStatusChanged})
}
