package redis_repo

import (
	"context"
	"os"
	"testing"

	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/rj_redis/pkg/cache"
	redis_cache "github.com/RoyceAzure/lab/rj_redis/pkg/cache/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testPrefix = "parkeat_test"
)

type KVRedisRepoTestSuite struct {
	suite.Suite
	client *redis.Client
	repo   *KVRedisRepo
}

func setupTestRedis() *redis.Client {
	addr := os.Getenv("PARKEAT_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("PARKEAT_TEST_REDIS_PASSWORD"),
		DB:       1, // 用測試DB
	})
}

func TestKVRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(KVRedisRepoTestSuite))
}

func (s *KVRedisRepoTestSuite) SetupSuite() {
	s.client = setupTestRedis()
	if err := s.client.Ping(context.Background()).Err(); err != nil {
		s.T().Skipf("redis not reachable: %v", err)
	}
	s.repo = NewKVRedisRepo(redis_cache.NewRedisCache(s.client, testPrefix))
}

func (s *KVRedisRepoTestSuite) SetupTest() {
	s.client.FlushDB(context.Background())
}

func (s *KVRedisRepoTestSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KVRedisRepoTestSuite) TestSetGetRemove() {
	ctx := context.Background()

	_, err := s.repo.Get(ctx, "parkeat_cart")
	require.ErrorIs(s.T(), err, kv.ErrNotFound)

	require.NoError(s.T(), s.repo.Set(ctx, "parkeat_cart", []byte(`{"storeId":"store-1"}`)))

	got, err := s.repo.Get(ctx, "parkeat_cart")
	require.NoError(s.T(), err)
	require.JSONEq(s.T(), `{"storeId":"store-1"}`, string(got))

	// key 含 prefix
	raw, err := s.client.Get(ctx, testPrefix+":parkeat_cart").Result()
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), raw)

	require.NoError(s.T(), s.repo.Remove(ctx, "parkeat_cart"))
	_, err = s.repo.Get(ctx, "parkeat_cart")
	require.ErrorIs(s.T(), err, kv.ErrNotFound)
}

func (s *KVRedisRepoTestSuite) TestJSONRoundTrip() {
	ctx := context.Background()
	type flag struct {
		Seen bool `json:"seen"`
	}

	require.NoError(s.T(), kv.SetJSON(ctx, s.repo, "parkeat_onboarding_complete", flag{Seen: true}))

	var got flag
	found, err := kv.GetJSON(ctx, s.repo, "parkeat_onboarding_complete", &got)
	require.NoError(s.T(), err)
	require.True(s.T(), found)
	require.True(s.T(), got.Seen)
}

// stubCache 只實作 repo 會用到的方法
type stubCache struct {
	cache.Cache
	values map[string]any
}

func (c *stubCache) Get(ctx context.Context, key string) (any, error) {
	v, ok := c.values[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func TestKVRedisRepo_GetMapsCacheResult(t *testing.T) {
	repo := NewKVRedisRepo(&stubCache{values: map[string]any{
		"parkeat_cart":    `{"storeId":"store-1"}`,
		"parkeat_strange": 42,
	}})
	ctx := context.Background()

	got, err := repo.Get(ctx, "parkeat_cart")
	require.NoError(t, err)
	require.JSONEq(t, `{"storeId":"store-1"}`, string(got))

	_, err = repo.Get(ctx, "parkeat_missing")
	require.ErrorIs(t, err, kv.ErrNotFound)

	_, err = repo.Get(ctx, "parkeat_strange")
	require.ErrorIs(t, err, kv.ErrCorrupted)
}
