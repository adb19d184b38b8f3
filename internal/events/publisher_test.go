package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "storefront-events" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "product_42" {
			return errors.New("unexpected key " + string(key))
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeFavoriteAdded || event.UserID != 7 || event.EventID == "" {
			return errors.New("unexpected payload " + string(raw))
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "storefront-events")
	require.NoError(t, publisher.Publish(context.Background(), FavoriteAdded(7, 42)))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "storefront-events")
	err := publisher.Publish(context.Background(), ProductDeleted(3, 2))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaPublisherWithProducer(producer, "storefront-events")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, publisher.Publish(ctx, FavoriteRemoved(1, 1)), context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNoopPublisher(t *testing.T) {
	publisher := NewNoopPublisher()
	assert.NoError(t, publisher.Publish(context.Background(), FavoriteAdded(1, 1)))
	assert.NoError(t, publisher.Close())
}
