package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/api"
	"github.com/RoyceAzure/lab/parkeat/internal/api/handler"
	"github.com/RoyceAzure/lab/parkeat/internal/appcontext"
	"github.com/RoyceAzure/lab/parkeat/internal/config"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/ratelimit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	app    *appcontext.ApplicationContext
	server *httptest.Server
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	cfg := config.Default()
	cfg.Session.AuthDelay = 0
	cfg.Checkout.PaymentDelay = 0
	cfg.Order.ProgressInterval = time.Hour

	logger := zerolog.Nop()
	app, err := appcontext.NewApplicationContext(context.Background(), cfg, logger)
	s.Require().NoError(err)
	s.app = app

	server := api.NewServer(
		handler.NewAuthHandler(app.SessionService, logger),
		handler.NewStoreHandler(app.Catalog, logger),
		handler.NewCartHandler(app.CartService, app.Catalog, logger),
		handler.NewOrderHandler(app.OrderService, app.CheckoutService, logger),
		handler.NewNotificationHandler(app.NotificationService, logger),
		handler.NewLocationHandler(app.LocationService, logger),
	)
	limiter := ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{Capacity: 3, RatePS: 0.001})
	s.server = httptest.NewServer(SetupRouter(server, limiter, logger))
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.app.Shutdown(context.Background()))
}

// do 回傳 status 與解開 data 後的 body
func (s *RouterTestSuite) do(method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()

	if out != nil && res.StatusCode < 300 {
		envelope := struct {
			Data json.RawMessage `json:"data"`
		}{}
		s.Require().NoError(json.NewDecoder(res.Body).Decode(&envelope))
		s.Require().NoError(json.Unmarshal(envelope.Data, out))
	}
	return res.StatusCode
}

func (s *RouterTestSuite) TestAuthFlow() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", nil, nil))

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "paco", "password": "nope"}, nil))
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "paco"}, nil))

	var res struct {
		User model.User `json:"user"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "PACO", "password": "12345"}, &res))
	s.Equal("user-1", res.User.ID)

	name := "Francisco"
	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/auth/me", map[string]string{"name": name}, &res))
	s.Equal(name, res.User.Name)

	s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/v1/auth/logout", nil, nil))
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/auth/me", nil, nil))
}

func (s *RouterTestSuite) TestRegisterConflictAndRateLimit() {
	body := map[string]string{"username": "maria", "email": "paco@example.com", "password": "x", "name": "María"}
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/auth/register", body, nil))

	body["email"] = "maria@example.com"
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/auth/register", body, nil))

	// 同一 IP 的第四次請求超過限制
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{}, nil))
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{}, nil))
}

func (s *RouterTestSuite) TestOnboarding() {
	var res struct {
		Seen bool `json:"seen"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/onboarding", nil, &res))
	s.False(res.Seen)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/onboarding", nil, &res))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/onboarding", nil, &res))
	s.True(res.Seen)
}

func (s *RouterTestSuite) TestStores() {
	var stores []model.Store
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/stores", nil, &stores))
	s.Len(stores, len(s.app.Catalog.Stores()))
	for i := 1; i < len(stores); i++ {
		s.LessOrEqual(stores[i-1].Distance, stores[i].Distance)
	}

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/stores?category=heladeria", nil, &stores))
	s.NotEmpty(stores)
	for _, st := range stores {
		s.Equal(model.StoreCategory("heladeria"), st.Category)
	}
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/stores?category=pizza", nil, nil))

	var store model.Store
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/stores/store-1", nil, &store))
	s.Equal("store-1", store.ID)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/stores/store-x", nil, nil))

	var reviews []model.Review
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/stores/store-1/reviews", nil, &reviews))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/stores/store-x/reviews", nil, nil))
}

type cartResponse struct {
	Cart    *model.Cart       `json:"cart"`
	Summary model.CartSummary `json:"summary"`
}

func (s *RouterTestSuite) TestCartAndCheckout() {
	var cart cartResponse
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/cart", nil, &cart))
	s.Nil(cart.Cart)

	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "nope"}, nil))
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1-1", "quantity": 0}, nil))

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1-1", "quantity": 3}, &cart))
	s.Equal(3, cart.Summary.ItemCount)
	s.Equal("4.5", cart.Summary.Subtotal.String())
	s.Equal("0.5", cart.Summary.ServiceFee.String())
	s.Equal("5", cart.Summary.Total.String())

	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/cart/items/p1-1", map[string]any{"notes": "tostado"}, &cart))
	s.Equal("tostado", cart.Cart.Items[0].Notes)
	s.Equal(http.StatusNotFound, s.do(http.MethodPatch, "/api/v1/cart/items/p1-9", map[string]any{"quantity": 2}, nil))

	// 沒有桌號不能結帳
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "card"}, nil))
	s.Equal(http.StatusOK, s.do(http.MethodPut, "/api/v1/cart/table", map[string]any{"tableCode": "A12"}, &cart))
	s.Equal("A12", cart.Cart.TableCode)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "paypal"}, nil))

	var order model.Order
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/checkout", map[string]any{"paymentMethod": "bizum"}, &order))
	s.Equal(model.OrderStatusConfirmed, order.Status)
	s.Equal("A12", order.TableCode)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/cart", nil, &cart))
	s.Nil(cart.Cart)

	var orders struct {
		Orders         []model.Order `json:"orders"`
		CurrentOrderID string        `json:"currentOrderId"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/orders", nil, &orders))
	s.Equal(order.ID, orders.CurrentOrderID)
	s.Equal(order.ID, orders.Orders[0].ID)

	var got model.Order
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/orders/"+order.ID, nil, &got))
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/v1/orders/order-0", nil, nil))

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", nil, &got))
	s.Equal(model.OrderStatusCancelled, got.Status)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", nil, nil))
}

func (s *RouterTestSuite) TestCartRemoveAndClear() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/v1/cart/table", map[string]any{"tableCode": "A1"}, nil))

	var cart cartResponse
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1-1"}, &cart))
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p1-2"}, &cart))
	s.Len(cart.Cart.Items, 2)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/v1/cart/items/p1-1", nil, &cart))
	s.Len(cart.Cart.Items, 1)

	s.Equal(http.StatusOK, s.do(http.MethodPatch, "/api/v1/cart/items/p1-2", map[string]any{"quantity": 0}, &cart))
	s.Nil(cart.Cart)

	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": "p2-1"}, &cart))
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/cart", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/cart", nil, &cart))
	s.Nil(cart.Cart)
}

func (s *RouterTestSuite) TestNotifications() {
	var res struct {
		Notifications []model.Notification `json:"notifications"`
		UnreadCount   int                  `json:"unreadCount"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/notifications", nil, &res))
	s.Require().NotEmpty(res.Notifications)
	unread := res.UnreadCount

	var target string
	for _, n := range res.Notifications {
		if !n.IsRead {
			target = n.ID
			break
		}
	}
	s.Require().NotEmpty(target)

	s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/v1/notifications/"+target+"/read", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/notifications", nil, &res))
	s.Equal(unread-1, res.UnreadCount)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/v1/notifications/nope/read", nil, nil))

	s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/v1/notifications/read-all", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/notifications", nil, &res))
	s.Zero(res.UnreadCount)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/notifications", nil, nil))
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/notifications", nil, &res))
	s.Empty(res.Notifications)
}

func (s *RouterTestSuite) TestLocation() {
	var state model.LocationState
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/v1/location", nil, &state))
	s.Equal(model.PermissionPending, state.Status)

	var res struct {
		Granted bool                `json:"granted"`
		State   model.LocationState `json:"state"`
	}
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/location/request", nil, &res))
	s.True(res.Granted)
	s.Equal(model.PermissionGranted, res.State.Status)
	s.Require().NotNil(res.State.Location)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/location/skip", nil, &state))
	s.Equal(model.PermissionDenied, state.Status)
	s.Require().NotNil(state.Location)
	s.Equal(s.app.Catalog.DemoLocation().Lat, state.Location.Lat)
}
