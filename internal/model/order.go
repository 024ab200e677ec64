package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pendiente",
	OrderStatusConfirmed:  "Confirmado",
	OrderStatusPreparing:  "En preparación",
	OrderStatusReady:      "Listo",
	OrderStatusDelivering: "En camino",
	OrderStatusDelivered:  "Entregado",
	OrderStatusCancelled:  "Cancelado",
}

func (s OrderStatus) IsValid() bool {
	_, ok := OrderStatusLabels[s]
	return ok
}

// IsTerminal delivered 與 cancelled 之後不會再有狀態變化
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodBizum     PaymentMethod = "bizum"
	PaymentMethodApplePay  PaymentMethod = "apple_pay"
	PaymentMethodGooglePay PaymentMethod = "google_pay"
	PaymentMethodCash      PaymentMethod = "cash"
)

var PaymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCard:      "Tarjeta de crédito/débito",
	PaymentMethodBizum:     "Bizum",
	PaymentMethodApplePay:  "Apple Pay",
	PaymentMethodGooglePay: "Google Pay",
	PaymentMethodCash:      "Efectivo al recibir",
}

func (p PaymentMethod) IsValid() bool {
	_, ok := PaymentMethodLabels[p]
	return ok
}

// 訂單建立後 Items 與金額不會變動
// 只有 Status 會變動
type Order struct {
	ID                string          `json:"id"`
	StoreID           string          `json:"storeId"`
	StoreName         string          `json:"storeName"`
	StoreImage        string          `json:"storeImage"`
	Items             []CartItem      `json:"items"`
	Status            OrderStatus     `json:"status"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ServiceFee        decimal.Decimal `json:"serviceFee"`
	Total             decimal.Decimal `json:"total"`
	TableCode         string          `json:"tableCode"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	CreatedAt         time.Time       `json:"createdAt"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = CloneCartItems(o.Items)
	return &cp
}
