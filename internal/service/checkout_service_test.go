package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CheckoutServiceTestSuite struct {
	suite.Suite
	cart          *CartService
	orders        *OrderService
	notifications *NotificationService
	service       *CheckoutService
	ticker        *manualTicker
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}

func (s *CheckoutServiceTestSuite) SetupTest() {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	logger := zerolog.Nop()

	s.cart = NewCartService(store, DefaultCartConfig(), logger)
	s.orders = NewOrderService(store, testCatalog, OrderConfig{}, logger)
	s.notifications = NewNotificationService(store, testCatalog, logger)
	s.ticker = newManualTicker()
	s.orders.SetTickerFactory(func(d time.Duration) Ticker { return s.ticker })

	require.NoError(s.T(), s.cart.Restore(ctx))
	require.NoError(s.T(), s.orders.Restore(ctx))
	require.NoError(s.T(), s.notifications.Restore(ctx))

	s.service = NewCheckoutService(s.cart, s.orders, s.notifications, testCatalog, CheckoutConfig{}, logger)
}

func (s *CheckoutServiceTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(s.T(), s.orders.Shutdown(ctx))
}

func (s *CheckoutServiceTestSuite) fillCart(tableCode string) {
	ctx := context.Background()
	_, err := s.cart.AddToCart(ctx, "Heladería Polar", testProduct("p2-1"), 2, "")
	require.NoError(s.T(), err)
	_, err = s.cart.AddToCart(ctx, "Heladería Polar", testProduct("p2-4"), 1, "")
	require.NoError(s.T(), err)
	if tableCode != "" {
		_, err = s.cart.SetTableCode(ctx, tableCode)
		require.NoError(s.T(), err)
	}
}

func (s *CheckoutServiceTestSuite) TestCheckout() {
	s.fillCart("MESA-B5")

	order, err := s.service.Checkout(context.Background(), CheckoutRequest{PaymentMethod: model.PaymentMethodBizum, Notes: "sin nata"})
	require.NoError(s.T(), err)

	require.Equal(s.T(), "store-2", order.StoreID)
	require.Equal(s.T(), "Heladería Polar", order.StoreName)
	require.Len(s.T(), order.Items, 2)
	require.True(s.T(), dec("12.90").Equal(order.Subtotal))
	require.True(s.T(), dec("0.645").Equal(order.ServiceFee))
	require.True(s.T(), dec("13.545").Equal(order.Total))
	require.Equal(s.T(), "MESA-B5", order.TableCode)
	require.Equal(s.T(), "sin nata", order.Notes)
	require.Equal(s.T(), model.OrderStatusConfirmed, order.Status)

	// 購物車清空
	require.Nil(s.T(), s.cart.Cart())

	// 通知
	list := s.notifications.Notifications()
	require.Equal(s.T(), "¡Pedido realizado!", list[0].Title)
	require.Equal(s.T(), "Tu pedido en Heladería Polar ha sido confirmado", list[0].Message)
	require.Equal(s.T(), order.ID, list[0].Data.OrderID)
	require.Equal(s.T(), "store-2", list[0].Data.StoreID)

	require.Equal(s.T(), order.ID, s.orders.CurrentOrder().ID)
}

func (s *CheckoutServiceTestSuite) TestCheckoutValidation() {
	ctx := context.Background()

	_, err := s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: model.PaymentMethodCard})
	require.ErrorIs(s.T(), err, ErrCartEmpty)

	s.fillCart("")
	_, err = s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: model.PaymentMethodCard})
	require.ErrorIs(s.T(), err, ErrTableCodeRequired)

	_, err = s.cart.SetTableCode(ctx, "MESA-1")
	require.NoError(s.T(), err)
	_, err = s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: "paypal"})
	require.ErrorIs(s.T(), err, ErrInvalidPaymentMethod)

	// 驗證失敗不建立訂單
	require.Len(s.T(), s.orders.Orders(), 2)
	require.NotNil(s.T(), s.cart.Cart())
}

func (s *CheckoutServiceTestSuite) TestCheckoutUnknownStore() {
	ctx := context.Background()
	ghost := model.Product{ID: "g-1", StoreID: "store-99", Price: dec("1.00")}
	_, err := s.cart.AddToCart(ctx, "Ghost", ghost, 1, "")
	require.NoError(s.T(), err)
	_, err = s.cart.SetTableCode(ctx, "MESA-1")
	require.NoError(s.T(), err)

	_, err = s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: model.PaymentMethodCash})
	require.ErrorIs(s.T(), err, ErrStoreNotFound)
}

func (s *CheckoutServiceTestSuite) TestCheckoutPaymentDelayCancelled() {
	s.fillCart("MESA-1")
	s.service.cfg.PaymentDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: model.PaymentMethodCard})
	require.ErrorIs(s.T(), err, context.DeadlineExceeded)
	require.NotNil(s.T(), s.cart.Cart())
	require.Len(s.T(), s.orders.Orders(), 2)
}

func (s *CheckoutServiceTestSuite) TestCheckoutIncludesItemAddedDuringPayment() {
	ctx := context.Background()
	_, err := s.cart.AddToCart(ctx, "Heladería Polar", testProduct("p2-1"), 1, "")
	require.NoError(s.T(), err)
	_, err = s.cart.SetTableCode(ctx, "MESA-2")
	require.NoError(s.T(), err)
	s.service.cfg.PaymentDelay = 300 * time.Millisecond

	type result struct {
		order *model.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := s.service.Checkout(ctx, CheckoutRequest{PaymentMethod: model.PaymentMethodCard})
		done <- result{order, err}
	}()

	_, err = s.cart.AddToCart(ctx, "Heladería Polar", testProduct("p2-4"), 1, "")
	require.NoError(s.T(), err)

	res := <-done
	require.NoError(s.T(), res.err)
	require.Len(s.T(), res.order.Items, 2)
	require.True(s.T(), dec("9.40").Equal(res.order.Subtotal))
	require.True(s.T(), dec("0.50").Equal(res.order.ServiceFee))
	require.True(s.T(), dec("9.90").Equal(res.order.Total))
	require.Nil(s.T(), s.cart.Cart())
}

// racingCart 在清空前插入一筆新商品，模擬快照之後的並行寫入
type racingCart struct {
	*CartService
	product model.Product
}

func (c *racingCart) ClearCartIfUnchanged(ctx context.Context, revision uint64) (bool, error) {
	if _, err := c.CartService.AddToCart(ctx, "Heladería Polar", c.product, 1, ""); err != nil {
		return false, err
	}
	return c.CartService.ClearCartIfUnchanged(ctx, revision)
}

func (s *CheckoutServiceTestSuite) TestCheckoutKeepsCartChangedAfterSnapshot() {
	s.fillCart("MESA-3")
	racing := &racingCart{CartService: s.cart, product: testProduct("p2-6")}
	svc := NewCheckoutService(racing, s.orders, s.notifications, testCatalog, CheckoutConfig{}, zerolog.Nop())

	order, err := svc.Checkout(context.Background(), CheckoutRequest{PaymentMethod: model.PaymentMethodCash})
	require.NoError(s.T(), err)
	require.Len(s.T(), order.Items, 2)

	cart := s.cart.Cart()
	require.NotNil(s.T(), cart)
	require.NotEqual(s.T(), -1, cart.IndexOf("p2-6"))
}
