package model

import "time"

type NotificationType string

const (
	NotificationTypeOrderStatus NotificationType = "order_status"
	NotificationTypePromotion   NotificationType = "promotion"
	NotificationTypeNews        NotificationType = "news"
)

type NotificationData struct {
	OrderID string `json:"orderId,omitempty"`
	StoreID string `json:"storeId,omitempty"`
}

type Notification struct {
	ID        string            `json:"id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"isRead"`
	CreatedAt time.Time         `json:"createdAt"`
	Data      *NotificationData `json:"data,omitempty"`
}

// NewNotification 由呼叫端提供的欄位，id/createdAt/isRead 由 store 指定
type NewNotification struct {
	Type    NotificationType  `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    *NotificationData `json:"data,omitempty"`
}
