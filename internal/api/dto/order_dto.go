package dto

import "github.com/RoyceAzure/lab/parkeat/internal/model"

type CheckoutDTO struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes,omitempty"`
}

type OrdersResponse struct {
	Orders         []model.Order `json:"orders"`
	CurrentOrderID string        `json:"currentOrderId,omitempty"`
}

type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

type LocationRequestResponse struct {
	Granted bool                `json:"granted"`
	State   model.LocationState `json:"state"`
}
