package event

import (
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/shopspring/decimal"
)

type BaseEvent struct {
	EventID     string    `json:"eventId"`
	AggregateID string    `json:"aggregateId"`
	CreatedAt   time.Time `json:"createdAt"`
	EventType   EventType `json:"eventType"`
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

type EventType string

const (
	OrderCreatedEventName       EventType = "OrderCreated"
	OrderStatusChangedEventName EventType = "OrderStatusChanged"
)

type Event interface {
	Type() EventType
	GetID() string
}

type OrderCreatedEvent struct {
	BaseEvent
	StoreID       string              `json:"storeId"`
	StoreName     string              `json:"storeName"`
	Items         []model.CartItem    `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ServiceFee    decimal.Decimal     `json:"serviceFee"`
	Total         decimal.Decimal     `json:"total"`
	TableCode     string              `json:"tableCode"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	ToState       model.OrderStatus   `json:"toState"`
}

func (e *OrderCreatedEvent) Type() EventType {
	return OrderCreatedEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	FromState model.OrderStatus `json:"fromState"`
	ToState   model.OrderStatus `json:"toState"`
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}

func NewOrderCreatedEvent(eventID string, order *model.Order, createdAt time.Time) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent: BaseEvent{
			EventID:     eventID,
			AggregateID: order.ID,
			CreatedAt:   createdAt,
			EventType:   OrderCreatedEventName,
		},
		StoreID:       order.StoreID,
		StoreName:     order.StoreName,
		Items:         model.CloneCartItems(order.Items),
		Subtotal:      order.Subtotal,
		ServiceFee:    order.ServiceFee,
		Total:         order.Total,
		TableCode:     order.TableCode,
		PaymentMethod: order.PaymentMethod,
		ToState:       order.Status,
	}
}

func NewOrderStatusChangedEvent(eventID string, orderID string, from, to model.OrderStatus, createdAt time.Time) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: BaseEvent{
			EventID:     eventID,
			AggregateID: orderID,
			CreatedAt:   createdAt,
			EventType:   OrderStatusChangedEventName,
		},
		FromState: from,
		ToState:   to,
	}
}
