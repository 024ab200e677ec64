package service

import (
	"context"
	"time"
)

// Ticker 可替換的時間來源，測試時可手動推進
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t timeTicker) Stop() {
	t.ticker.Stop()
}

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{ticker: time.NewTicker(d)}
}

// ProgressTask 單一訂單的狀態推進工作
type ProgressTask struct {
	OrderID string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Cancel 可重複呼叫
func (t *ProgressTask) Cancel() {
	t.cancel()
}

// Done 工作結束後關閉，無論是完成或被取消
func (t *ProgressTask) Done() <-chan struct{} {
	return t.done
}
