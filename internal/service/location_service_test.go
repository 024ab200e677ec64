package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/geo"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoLocation = model.UserLocation{Lat: 40.4168, Lng: -3.7038}

func newLocationService(t *testing.T, store kv.Store, g geo.Geolocator) *LocationService {
	svc := NewLocationService(store, g, demoLocation, LocationConfig{}, zerolog.Nop())
	require.NoError(t, svc.Restore(context.Background()))
	return svc
}

func TestLocationService_StartsPending(t *testing.T) {
	svc := newLocationService(t, kv.NewMemoryStore(), nil)
	state := svc.State()
	assert.Equal(t, model.PermissionPending, state.Status)
	assert.Nil(t, state.Location)
	assert.False(t, state.IsLoading)
}

func TestLocationService_Unavailable(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newLocationService(t, store, nil)

	ok, err := svc.RequestPermission(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	state := svc.State()
	assert.Equal(t, model.PermissionUnavailable, state.Status)
	assert.Equal(t, &demoLocation, state.Location)
	assert.Equal(t, MsgGeolocationUnavailable, state.Error)

	restored := newLocationService(t, store, nil)
	assert.Equal(t, model.PermissionUnavailable, restored.PermissionStatus())
	assert.Equal(t, &demoLocation, restored.Location())
}

func TestLocationService_Granted(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newLocationService(t, store, geo.NewStaticGeolocator(40.42, -3.69, 15))

	ok, err := svc.RequestPermission(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	loc := svc.Location()
	require.NotNil(t, loc)
	assert.Equal(t, 40.42, loc.Lat)
	require.NotNil(t, loc.Accuracy)
	assert.Equal(t, 15.0, *loc.Accuracy)
	assert.Empty(t, svc.State().Error)

	// 重新載入使用保存的座標
	restored := newLocationService(t, store, nil)
	assert.Equal(t, model.PermissionGranted, restored.PermissionStatus())
	require.NotNil(t, restored.Location())
	assert.Equal(t, -3.69, restored.Location().Lng)
}

func TestLocationService_DeniedFallsBack(t *testing.T) {
	ctx := context.Background()
	svc := newLocationService(t, kv.NewMemoryStore(), geo.DenyingGeolocator{})

	ok, err := svc.RequestPermission(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	state := svc.State()
	assert.Equal(t, model.PermissionDenied, state.Status)
	assert.Equal(t, &demoLocation, state.Location)
	assert.Equal(t, MsgLocationFailed, state.Error)
}

func TestLocationService_TimeoutDenies(t *testing.T) {
	slow := geo.GeolocatorFunc(func(ctx context.Context) (model.UserLocation, error) {
		<-ctx.Done()
		return model.UserLocation{}, ctx.Err()
	})
	svc := NewLocationService(kv.NewMemoryStore(), slow, demoLocation, LocationConfig{Timeout: 10 * time.Millisecond}, zerolog.Nop())

	ok, err := svc.RequestPermission(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	assert.Equal(t, model.PermissionDenied, svc.PermissionStatus())
}

func TestLocationService_CallerCancelLeavesState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocking := geo.GeolocatorFunc(func(gctx context.Context) (model.UserLocation, error) {
		cancel()
		<-gctx.Done()
		return model.UserLocation{}, gctx.Err()
	})
	svc := newLocationService(t, kv.NewMemoryStore(), blocking)

	_, err := svc.RequestPermission(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.PermissionPending, svc.PermissionStatus())
	assert.False(t, svc.State().IsLoading)
}

func TestLocationService_MaxAgeReusesFix(t *testing.T) {
	calls := 0
	g := geo.GeolocatorFunc(func(ctx context.Context) (model.UserLocation, error) {
		calls++
		return model.UserLocation{Lat: float64(calls), Lng: 1}, nil
	})
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newLocationService(t, kv.NewMemoryStore(), g)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := svc.RequestPermission(ctx)
	require.NoError(t, err)

	now = now.Add(4 * time.Minute)
	_, err = svc.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, svc.Location().Lat)

	now = now.Add(2 * time.Minute)
	_, err = svc.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2.0, svc.Location().Lat)
}

func TestLocationService_Skip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newLocationService(t, store, geo.NewStaticGeolocator(1, 1, 0))

	require.NoError(t, svc.SkipPermission(ctx))
	assert.Equal(t, model.PermissionDenied, svc.PermissionStatus())
	assert.Equal(t, &demoLocation, svc.Location())
	assert.Empty(t, svc.State().Error)

	b, err := store.Get(ctx, constants.LocationPermissionKey)
	require.NoError(t, err)
	assert.JSONEq(t, `"denied"`, string(b))
}

func TestLocationService_RestoreUnknownStatus(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, constants.LocationPermissionKey, []byte(`"maybe"`)))

	svc := newLocationService(t, store, nil)
	assert.Equal(t, model.PermissionPending, svc.PermissionStatus())
	assert.Nil(t, svc.Location())
}
