package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/rs/zerolog"
)

// wait 模擬網路延遲，ctx 取消時提前返回
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// restoreJSON 讀取持久化狀態
// 內容毀損時記錄 log 並視為不存在，由呼叫端改用預設值
func restoreJSON(ctx context.Context, store kv.Store, logger zerolog.Logger, key string, out any) (bool, error) {
	found, err := kv.GetJSON(ctx, store, key, out)
	if err != nil {
		if errors.Is(err, kv.ErrCorrupted) {
			logger.Warn().Err(err).Str("key", key).Msg("discard corrupted record, fallback to default")
			return false, nil
		}
		return false, err
	}
	return found, nil
}
