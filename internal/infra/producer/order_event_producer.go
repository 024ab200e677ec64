package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/model/event"
	kafka_model "github.com/RoyceAzure/lab/rj_kafka/pkg/model"
	rj_producer "github.com/RoyceAzure/lab/rj_kafka/pkg/producer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// OrderEventProducer 將訂單生命週期事件送到 kafka
// key 為 order id，同一訂單的事件落在同一 partition
// 依呼叫順序逐筆交給 writer，不另外分批
type OrderEventProducer struct {
	writer rj_producer.Writer
	logger zerolog.Logger
	now    func() time.Time
}

// NewKafkaWriter 非同步寫入，錯誤由 Completion 記錄
func NewKafkaWriter(cfg Config, logger zerolog.Logger) *kafka.Writer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           batchTimeout,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().Err(err).Int("messages", len(messages)).Msg("failed to deliver order events")
			}
		},
	}
}

func NewOrderEventProducer(writer rj_producer.Writer, logger zerolog.Logger) *OrderEventProducer {
	return &OrderEventProducer{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

func (p *OrderEventProducer) OnOrderCreated(ctx context.Context, order *model.Order) {
	evt := event.NewOrderCreatedEvent(uuid.NewString(), order, p.now())
	if err := p.produce(ctx, order.ID, evt); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order created event")
	}
}

func (p *OrderEventProducer) OnOrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus) {
	evt := event.NewOrderStatusChangedEvent(uuid.NewString(), order.ID, from, order.Status, p.now())
	if err := p.produce(ctx, order.ID, evt); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order status changed event")
	}
}

func (p *OrderEventProducer) produce(ctx context.Context, orderID string, evt event.Event) error {
	msg, err := convertToMessage(orderID, evt, p.now())
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg.ToKafkaMessage())
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

func convertToMessage(orderID string, evt event.Event, now time.Time) (*kafka_model.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", evt.Type(), err)
	}
	return &kafka_model.Message{
		Key:   []byte(orderID),
		Value: value,
		Headers: []kafka_model.Header{
			{Key: EventTypeHeader, Value: []byte(evt.Type())},
		},
		Time: now,
	}, nil
}
