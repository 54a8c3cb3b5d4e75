//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"kycore/internal/platform/config"
	"kycore/pkg/ddd"
	"kycore/pkg/domain"
	"kycore/pkg/testutil/containers"
)

func TestEventSink_Redpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t).Broker
	const topic = "kycore.test-events"

	client, err := NewClient(config.KafkaConfig{Brokers: []string{broker}, Topic: topic})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	id := domain.NewID()
	require.NoError(t, NewEventSink(client, topic).Handle(context.Background(), accountOpened{
		EventBase: ddd.NewEventBase(id),
		Plan:      "silver",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.NotEmpty(t, records)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(records[0].Value, &envelope))
	require.Equal(t, id.String(), envelope.AggregateID)
	require.Equal(t, "account.opened", envelope.Kind)
}
