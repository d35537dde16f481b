// Package main provides the worker that turns the docflow event stream into
// per-document history.
package main

import (
	"context"
	"log/slog"

	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/services"
)

// recordedEvents are the event types kept in document history.
var recordedEvents = []events.EventType{
	events.DocumentCreatedEvent,
	events.WorkflowActivatedEvent,
	events.DocumentRegisteredEvent,
}

type Worker struct {
	id       string
	history  *services.History
	eventBus eventbus.EventBus
	logger   *slog.Logger
}

func NewWorker(id string, history *services.History, eventBus eventbus.EventBus, logger *slog.Logger) *Worker {
	return &Worker{
		id:       id,
		history:  history,
		eventBus: eventBus,
		logger:   logger.With("module", "docflow-worker", "worker_id", id),
	}
}

// Start subscribes to the event stream and blocks until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker")

	for _, eventType := range recordedEvents {
		if err := w.eventBus.Handle(eventType, w.handleEvent); err != nil {
			return err
		}
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	<-ctx.Done()
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

// handleEvent records one event. Storage errors are returned so the message
// is redelivered.
func (w *Worker) handleEvent(ctx context.Context, event any) error {
	recordable, ok := event.(services.RecordableEvent)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for history", "event", event)

		return nil
	}

	header := recordable.Header()
	logger := w.logger.With("event_id", header.ID, "document_id", header.DocumentID, "event_type", recordable.GetType())

	recorded, err := w.history.Record(ctx, recordable)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record event", "error", err)

		return err
	}

	if recorded {
		logger.InfoContext(ctx, "Recorded document event")
	}

	return nil
}
