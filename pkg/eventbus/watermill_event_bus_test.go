package eventbus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/docflow/pkg/channels/gochannel"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan *events.DocumentRegistered, 1)

	require.NoError(t, bus.Handle(events.DocumentRegisteredEvent, func(_ context.Context, event any) error {
		received <- event.(*events.DocumentRegistered)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	published := events.NewDocumentRegistered("doc-1", &models.RegistrationNumber{
		Prefix: "ВХ", Number: "000001", RegistratorID: "registrar",
	})
	require.NoError(t, bus.Publish(ctx, "doc-1", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "doc-1", got.DocumentID)
		assert.Equal(t, "ВХ-000001/", got.RegistrationNumber)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newBus(t)
	received := make(chan any, 2)

	require.NoError(t, bus.Handle(events.WorkflowActivatedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	document := &models.Document{ID: "doc-2", CreatorID: "creator", DocumentType: models.DocumentTypeOrder}
	require.NoError(t, bus.Publish(ctx, "doc-2", events.NewDocumentCreated(document, "wf-2")))
	require.NoError(t, bus.Publish(ctx, "doc-2", events.NewWorkflowActivated(&models.Workflow{ID: "wf-2", DocumentID: "doc-2"}, "creator")))

	select {
	case got := <-received:
		activated, ok := got.(*events.WorkflowActivated)
		require.True(t, ok)
		assert.Equal(t, "wf-2", activated.WorkflowID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}

	assert.NotEmpty(t, bus.GenerateID())
}

func TestWatermillPublisher_Publish(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	messages, err := sub.Subscribe(ctx, events.Topic)
	require.NoError(t, err)

	publisher := eventbus.NewWatermillPublisher(pub)
	t.Cleanup(func() { _ = publisher.Close() })

	document := &models.Document{ID: "doc-3", CreatorID: "creator", DocumentType: models.DocumentTypeOrder}
	require.NoError(t, publisher.Publish(ctx, "doc-3", events.NewDocumentCreated(document, "wf-3")))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "doc-3", msg.Metadata.Get(events.EventMetadataKey))
		assert.Equal(t, string(events.DocumentCreatedEvent), msg.Metadata.Get(events.EventTypeMetadataKey))
		assert.Contains(t, string(msg.Payload), `"workflow_id":"wf-3"`)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not published")
	}
}
