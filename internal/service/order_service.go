package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/pkg/util"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotExist       = errors.New("order is not exist")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
	ErrOrderNotCancellable = errors.New("order can not be cancelled")
	ErrOrderFinished       = errors.New("order is already delivered or cancelled")
)

// confirmed 之後每個 tick 推進一步
var progressSequence = []model.OrderStatus{
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusDelivering,
	model.OrderStatusDelivered,
}

// OrderObserver 在鎖外被呼叫，收到的是複本
type OrderObserver interface {
	OnOrderCreated(ctx context.Context, order *model.Order)
	OnOrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus)
}

type CreateOrderParams struct {
	StoreID       string
	StoreName     string
	StoreImage    string
	Items         []model.CartItem
	Subtotal      decimal.Decimal
	ServiceFee    decimal.Decimal
	Total         decimal.Decimal
	TableCode     string
	PaymentMethod model.PaymentMethod
	Notes         string
}

type IOrderService interface {
	Restore(ctx context.Context) error
	AddObserver(observer OrderObserver)
	CreateOrder(ctx context.Context, params CreateOrderParams) (*model.Order, error)
	// UpdateOrderStatus 不檢查狀態轉換順序，允許倒退
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderByID(orderID string) (*model.Order, bool)
	Orders() []model.Order
	CurrentOrder() *model.Order
	// SimulateOrderProgress delivered 或 cancelled 的訂單回傳 ErrOrderFinished，不會倒回 confirmed
	SimulateOrderProgress(ctx context.Context, orderID string) (*ProgressTask, error)
	Shutdown(ctx context.Context) error
}

type OrderConfig struct {
	ProgressInterval  time.Duration
	EstimatedDelivery string
}

type OrderService struct {
	mu             sync.Mutex
	store          kv.Store
	catalog        *catalog.Catalog
	logger         zerolog.Logger
	cfg            OrderConfig
	now            func() time.Time
	newTicker      TickerFactory
	ids            *util.IDGenerator
	orders         []model.Order
	currentOrderID string
	observers      []OrderObserver

	baseCtx    context.Context
	baseCancel context.CancelFunc
	tasks      map[string]*ProgressTask
	wg         sync.WaitGroup
}

var _ IOrderService = (*OrderService)(nil)

func NewOrderService(store kv.Store, c *catalog.Catalog, cfg OrderConfig, logger zerolog.Logger) *OrderService {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = constants.DefaultProgressInterval
	}
	if cfg.EstimatedDelivery == "" {
		cfg.EstimatedDelivery = constants.DefaultEstimatedDelivery
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	s := &OrderService{
		store:      store,
		catalog:    c,
		logger:     logger.With().Str("service", "order").Logger(),
		cfg:        cfg,
		now:        time.Now,
		newTicker:  NewTimeTicker,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		tasks:      make(map[string]*ProgressTask),
	}
	s.ids = util.NewIDGenerator("order", func() time.Time { return s.now() })
	return s
}

// SetTickerFactory 僅供測試替換時間來源
func (s *OrderService) SetTickerFactory(f TickerFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newTicker = f
}

func (s *OrderService) AddObserver(observer OrderObserver) {
	if util.IsNil(observer) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Restore 沒有紀錄時使用內建的歷史訂單，seed 不寫回 store
func (s *OrderService) Restore(ctx context.Context) error {
	var orders []model.Order
	found, err := restoreJSON(ctx, s.store, s.logger, constants.OrderHistoryKey, &orders)
	if err != nil {
		return fmt.Errorf("restore orders: %w", err)
	}
	if !found {
		orders = s.catalog.SeedOrderHistory(s.now())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.currentOrderID = ""
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, params CreateOrderParams) (*model.Order, error) {
	s.mu.Lock()

	order := model.Order{
		ID:                s.ids.Next(),
		StoreID:           params.StoreID,
		StoreName:         params.StoreName,
		StoreImage:        params.StoreImage,
		Items:             model.CloneCartItems(params.Items),
		Status:            model.OrderStatusPending,
		Subtotal:          params.Subtotal,
		ServiceFee:        params.ServiceFee,
		Total:             params.Total,
		TableCode:         params.TableCode,
		PaymentMethod:     params.PaymentMethod,
		CreatedAt:         s.now(),
		EstimatedDelivery: s.cfg.EstimatedDelivery,
		Notes:             params.Notes,
	}

	next := make([]model.Order, 0, len(s.orders)+1)
	next = append(next, order)
	next = append(next, s.orders...)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.currentOrderID = order.ID
	observers := s.observers
	s.mu.Unlock()

	s.logger.Info().Str("order_id", order.ID).Str("store_id", order.StoreID).Msg("order created")
	for _, o := range observers {
		o.OnOrderCreated(ctx, order.Clone())
	}
	return order.Clone(), nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	return s.setStatus(ctx, orderID, status, nil)
}

// CancelOrder 先停止推進工作再寫入 cancelled
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, ok := s.GetOrderByID(orderID)
	if !ok {
		return nil, ErrOrderNotExist
	}
	if order.Status.IsTerminal() {
		return nil, ErrOrderNotCancellable
	}

	s.mu.Lock()
	task := s.tasks[orderID]
	s.mu.Unlock()
	if task != nil {
		task.Cancel()
		select {
		case <-task.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// 等待期間可能已推進到 delivered
	return s.setStatus(ctx, orderID, model.OrderStatusCancelled, func(current model.OrderStatus) error {
		if current.IsTerminal() {
			return ErrOrderNotCancellable
		}
		return nil
	})
}

func (s *OrderService) setStatus(ctx context.Context, orderID string, status model.OrderStatus, guard func(current model.OrderStatus) error) (*model.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}

	s.mu.Lock()
	i := s.indexOf(orderID)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrOrderNotExist
	}
	from := s.orders[i].Status
	if guard != nil {
		if err := guard(from); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}

	next := make([]model.Order, len(s.orders))
	copy(next, s.orders)
	next[i].Status = status
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	updated := next[i].Clone()
	observers := s.observers
	s.mu.Unlock()

	if from != status {
		s.logger.Debug().
			Str("order_id", orderID).
			Str("from", string(from)).
			Str("to", string(status)).
			Msg("order status changed")
		for _, o := range observers {
			o.OnOrderStatusChanged(ctx, updated.Clone(), from)
		}
	}
	return updated, nil
}

// commit 需持有鎖
func (s *OrderService) commit(ctx context.Context, next []model.Order) error {
	if err := kv.SetJSON(ctx, s.store, constants.OrderHistoryKey, next); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	s.orders = next
	return nil
}

func (s *OrderService) indexOf(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *OrderService) GetOrderByID(orderID string) (*model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(orderID)
	if i < 0 {
		return nil, false
	}
	return s.orders[i].Clone(), true
}

// Orders 由新到舊
func (s *OrderService) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Order, len(s.orders))
	for i := range s.orders {
		result[i] = *s.orders[i].Clone()
	}
	return result
}

// CurrentOrder 本次執行期間最後建立的訂單
func (s *OrderService) CurrentOrder() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentOrderID == "" {
		return nil
	}
	i := s.indexOf(s.currentOrderID)
	if i < 0 {
		return nil
	}
	return s.orders[i].Clone()
}

// SimulateOrderProgress 立即設為 confirmed，之後每個間隔推進一步直到 delivered
// 同一訂單重複呼叫會取代先前的工作，推進狀態不跨重啟保存
func (s *OrderService) SimulateOrderProgress(ctx context.Context, orderID string) (*ProgressTask, error) {
	if err := s.baseCtx.Err(); err != nil {
		return nil, fmt.Errorf("order service is shut down: %w", err)
	}

	order, ok := s.GetOrderByID(orderID)
	if !ok {
		return nil, ErrOrderNotExist
	}
	if order.Status.IsTerminal() {
		return nil, ErrOrderFinished
	}

	s.mu.Lock()
	prev := s.tasks[orderID]
	s.mu.Unlock()
	if prev != nil {
		prev.Cancel()
		<-prev.Done()
	}

	// 等待舊工作結束期間可能已被取消
	_, err := s.setStatus(ctx, orderID, model.OrderStatusConfirmed, func(current model.OrderStatus) error {
		if current.IsTerminal() {
			return ErrOrderFinished
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	taskCtx, cancel := context.WithCancel(s.baseCtx)
	task := &ProgressTask{
		OrderID: orderID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	if err := s.baseCtx.Err(); err != nil {
		s.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("order service is shut down: %w", err)
	}
	ticker := s.newTicker(s.cfg.ProgressInterval)
	s.tasks[orderID] = task
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runProgress(taskCtx, task, ticker)
	return task, nil
}

func (s *OrderService) runProgress(ctx context.Context, task *ProgressTask, ticker Ticker) {
	defer s.wg.Done()
	defer close(task.done)
	defer func() {
		s.mu.Lock()
		if s.tasks[task.OrderID] == task {
			delete(s.tasks, task.OrderID)
		}
		s.mu.Unlock()
	}()
	defer task.cancel()
	defer ticker.Stop()

	for _, status := range progressSequence {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
		if _, err := s.UpdateOrderStatus(ctx, task.OrderID, status); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Str("order_id", task.OrderID).Msg("failed to advance order status")
			return
		}
	}
}

// Shutdown 取消所有推進工作並等待結束
func (s *OrderService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.baseCancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
