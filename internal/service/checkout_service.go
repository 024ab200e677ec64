package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrTableCodeRequired    = errors.New("table code is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrStoreNotFound        = errors.New("store not found")
	ErrProductNotFound      = errors.New("product not found")
)

type CheckoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes,omitempty"`
}

type ICheckoutService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error)
}

type CheckoutConfig struct {
	PaymentDelay time.Duration
}

// CheckoutService 串接購物車、訂單、通知
// 各步驟獨立寫入，沒有跨 store 的交易
type CheckoutService struct {
	cart          ICartService
	orders        IOrderService
	notifications INotificationService
	catalog       *catalog.Catalog
	cfg           CheckoutConfig
	logger        zerolog.Logger
}

var _ ICheckoutService = (*CheckoutService)(nil)

func NewCheckoutService(cart ICartService, orders IOrderService, notifications INotificationService, c *catalog.Catalog, cfg CheckoutConfig, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		cart:          cart,
		orders:        orders,
		notifications: notifications,
		catalog:       c,
		cfg:           cfg,
		logger:        logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout 訂單建立後的步驟失敗只記錄 log，訂單仍然成立
// 付款等待結束後才取購物車快照，訂單內容與金額都來自同一份快照
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*model.Order, error) {
	if _, err := s.validate(s.cart.Snapshot(), req); err != nil {
		return nil, err
	}

	// 模擬付款
	if err := wait(ctx, s.cfg.PaymentDelay); err != nil {
		return nil, err
	}

	snapshot := s.cart.Snapshot()
	store, err := s.validate(snapshot, req)
	if err != nil {
		return nil, err
	}
	cart, summary := snapshot.Cart, snapshot.Summary

	order, err := s.orders.CreateOrder(ctx, CreateOrderParams{
		StoreID:       store.ID,
		StoreName:     store.Name,
		StoreImage:    store.Image,
		Items:         cart.Items,
		Subtotal:      summary.Subtotal,
		ServiceFee:    summary.ServiceFee,
		Total:         summary.Total,
		TableCode:     cart.TableCode,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	_, err = s.notifications.AddNotification(ctx, model.NewNotification{
		Type:    model.NotificationTypeOrderStatus,
		Title:   "¡Pedido realizado!",
		Message: fmt.Sprintf("Tu pedido en %s ha sido confirmado", store.Name),
		Data:    &model.NotificationData{OrderID: order.ID, StoreID: store.ID},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to add order placed notification")
	}

	if _, err := s.orders.SimulateOrderProgress(ctx, order.ID); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to start order progress")
	} else if current, ok := s.orders.GetOrderByID(order.ID); ok {
		order = current
	}

	// 快照之後購物車有變動時保留，避免吃掉新加入的商品
	cleared, err := s.cart.ClearCartIfUnchanged(ctx, snapshot.Revision)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to clear cart after checkout")
	} else if !cleared {
		s.logger.Warn().Str("order_id", order.ID).Msg("cart changed during checkout, keep it")
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("payment_method", string(req.PaymentMethod)).
		Str("total", order.Total.StringFixed(2)).
		Msg("checkout completed")
	return order, nil
}

func (s *CheckoutService) validate(snapshot CartSnapshot, req CheckoutRequest) (model.Store, error) {
	cart := snapshot.Cart
	if cart == nil || len(cart.Items) == 0 {
		return model.Store{}, ErrCartEmpty
	}
	store, ok := s.catalog.StoreByID(cart.StoreID)
	if !ok {
		return model.Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, cart.StoreID)
	}
	if strings.TrimSpace(cart.TableCode) == "" {
		return model.Store{}, ErrTableCodeRequired
	}
	if !req.PaymentMethod.IsValid() {
		return model.Store{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	return store, nil
}
