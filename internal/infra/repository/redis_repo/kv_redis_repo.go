package redis_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	redis_cache "github.com/RoyceAzure/lab/rj_redis/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// KVRedisRepo 以 redis string 存放各狀態的 JSON，不設 TTL
// key 的 prefix 由 cache 負責加上
type KVRedisRepo struct {
	cache redis_cache.Cache
}

func NewKVRedisRepo(cache redis_cache.Cache) *KVRedisRepo {
	return &KVRedisRepo{cache: cache}
}

var _ kv.Store = (*KVRedisRepo)(nil)

func (r *KVRedisRepo) Ping(ctx context.Context) error {
	_, err := r.cache.Ping(ctx)
	return err
}

func (r *KVRedisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.cache.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	str, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected redis value type %T", kv.ErrCorrupted, value)
	}
	return []byte(str), nil
}

func (r *KVRedisRepo) Set(ctx context.Context, key string, value []byte) error {
	return r.cache.Set(ctx, key, value, 0)
}

func (r *KVRedisRepo) Remove(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
