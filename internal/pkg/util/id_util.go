package util

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator 產生 "<prefix>-<unix millis>" 形式的 id
// 同一毫秒內連續呼叫時遞增，保證嚴格遞增不重複
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	now    func() time.Time
	last   int64
}

func NewIDGenerator(prefix string, now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{
		prefix: prefix,
		now:    now,
	}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", g.prefix, ms)
}
