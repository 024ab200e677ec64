package service

import (
	"context"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/shopspring/decimal"
)

var testCatalog = catalog.MustLoad()

func testProduct(id string) model.Product {
	p, ok := testCatalog.ProductByID(id)
	if !ok {
		panic("unknown product " + id)
	}
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// manualTicker 由測試手動送出 tick
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// recordingObserver 記錄所有狀態變化
type recordingObserver struct {
	mu      sync.Mutex
	created []string
	changes chan model.OrderStatus
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{changes: make(chan model.OrderStatus, 32)}
}

func (o *recordingObserver) OnOrderCreated(ctx context.Context, order *model.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, order.ID)
}

func (o *recordingObserver) OnOrderStatusChanged(ctx context.Context, order *model.Order, from model.OrderStatus) {
	o.changes <- order.Status
}
