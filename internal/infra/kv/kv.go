package kv

//go:generate mockgen -source=kv.go -destination=mock/mock_kv.go -package=mock_kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("kv: key not found")
	ErrCorrupted = errors.New("kv: corrupted value")
)

// Store 持久化底層，值一律為 JSON bytes
// 實作：記憶體、redis、sql(gorm)
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetJSON 讀取並解碼，key 不存在時回傳 false 且不視為錯誤
// 內容無法解碼時回傳 ErrCorrupted
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	b, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupted, key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, b); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
