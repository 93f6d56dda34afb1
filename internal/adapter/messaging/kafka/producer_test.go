package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront-payments/internal/core/domain"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() domain.OrderEvent {
	return domain.NewOrderEvent(domain.OrderEventCreated, &domain.Order{
		ID:     17,
		Type:   domain.PurchaseTypeBalance,
		UserID: "user-1",
		Status: domain.OrderStatusPending,
		Total:  decimal.RequireFromString("60"),
	}, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig())
	defer producer.Close()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "orders.events" {
			return errors.New("wrong topic: " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "saldo:17" {
			return errors.New("wrong key: " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got domain.OrderEvent
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.Type != domain.OrderEventCreated || got.OrderKey != "17" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewPublisherWithProducer(producer, "orders.events", zerolog.Nop())
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
}

func TestPublisher_Publish_BrokerError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewProducerConfig())
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewPublisherWithProducer(producer, "orders.events", zerolog.Nop())
	err := pub.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestMessageKey(t *testing.T) {
	event := domain.NewOrderEvent(domain.OrderEventGatewayNotification, &domain.Order{
		Type:          domain.PurchaseTypeGateway,
		ReferenceCode: "REF1",
	}, time.Now())

	assert.Equal(t, "payu:REF1", MessageKey(event))
}

func TestNewProducerConfig(t *testing.T) {
	cfg := NewProducerConfig()
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.Equal(t, 3, cfg.Producer.Retry.Max)
	assert.True(t, cfg.Producer.Return.Successes)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
