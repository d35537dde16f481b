//go:build integration

package kafka

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("docflow-test"),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(context.Background()))
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	createTopic(t, brokers, events.Topic)

	return brokers[0]
}

func createTopic(t *testing.T, brokers []string, topic string) {
	t.Helper()

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	admin, err := sarama.NewClusterAdmin(brokers, config)
	require.NoError(t, err)

	defer func() { _ = admin.Close() }()

	err = admin.CreateTopic(topic, &sarama.TopicDetail{NumPartitions: 1, ReplicationFactor: 1}, false)
	require.NoError(t, err)
}

func TestCreateChannel_RoundTrip(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", setupKafka(t))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pub, sub, err := CreateChannel(watermill.NewSlogLogger(logger), "docflow-integration")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.DocumentRegistered, 1)

	require.NoError(t, bus.Handle(events.DocumentRegisteredEvent, func(_ context.Context, event any) error {
		received <- event.(*events.DocumentRegistered)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	published := events.NewDocumentRegistered("doc-42", &models.RegistrationNumber{
		Prefix: "ИСХ-ВСМ", Number: "000042", Postfix: "-К", RegistratorID: "registrar",
	})
	require.NoError(t, bus.Publish(ctx, "doc-42", published))

	select {
	case got := <-received:
		assert.Equal(t, published.ID, got.ID)
		assert.Equal(t, "ИСХ-ВСМ-000042/-К", got.RegistrationNumber)
	case <-time.After(60 * time.Second):
		t.Fatal("event was not delivered through Kafka")
	}
}
