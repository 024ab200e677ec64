package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/rs/zerolog"
)

type statusMessage struct {
	title   string
	message string
}

// pending 與 confirmed 由結帳流程自己發通知
var statusMessages = map[model.OrderStatus]statusMessage{
	model.OrderStatusPreparing:  {title: "Pedido en preparación", message: "Tu pedido de %s está siendo preparado"},
	model.OrderStatusReady:      {title: "¡Pedido listo!", message: "Tu pedido de %s está listo"},
	model.OrderStatusDelivering: {title: "Pedido en camino", message: "Tu pedido de %s está en camino a tu mesa"},
	model.OrderStatusDelivered:  {title: "Pedido entregado", message: "Tu pedido de %s ha sido entregado. ¡Buen provecho!"},
	model.OrderStatusCancelled:  {title: "Pedido cancelado", message: "Tu pedido de %s ha sido cancelado"},
}

// OrderStatusNotifier 訂單狀態變化時新增通知
type OrderStatusNotifier struct {
	notifications INotificationService
	logger        zerolog.Logger
}

func NewOrderStatusNotifier(notifications INotificationService, logger zerolog.Logger) *OrderStatusNotifier {
	return &OrderStatusNotifier{
		notifications: notifications,
		logger:        logger.With().Str("observer", "order_status_notifier").Logger(),
	}
}

var _ OrderObserver = (*OrderStatusNotifier)(nil)

func (n *OrderStatusNotifier) OnOrderCreated(ctx context.Context, order *model.Order) {}

func (n *OrderStatusNotifier) OnOrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus) {
	msg, ok := statusMessages[order.Status]
	if !ok {
		return
	}
	_, err := n.notifications.AddNotification(ctx, model.NewNotification{
		Type:    model.NotificationTypeOrderStatus,
		Title:   msg.title,
		Message: fmt.Sprintf(msg.message, order.StoreName),
		Data:    &model.NotificationData{OrderID: order.ID, StoreID: order.StoreID},
	})
	if err != nil {
		n.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to add status notification")
	}
}
