package geo

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
)

// Geolocator 平台定位能力，呼叫端負責 timeout
type Geolocator interface {
	CurrentPosition(ctx context.Context) (model.UserLocation, error)
}

// GeolocatorFunc 讓一般函式可作為 Geolocator
type GeolocatorFunc func(ctx context.Context) (model.UserLocation, error)

func (f GeolocatorFunc) CurrentPosition(ctx context.Context) (model.UserLocation, error) {
	return f(ctx)
}

// StaticGeolocator 固定回傳同一個座標
type StaticGeolocator struct {
	Location model.UserLocation
}

func NewStaticGeolocator(lat, lng float64, accuracy float64) *StaticGeolocator {
	loc := model.UserLocation{Lat: lat, Lng: lng}
	if accuracy > 0 {
		loc.Accuracy = &accuracy
	}
	return &StaticGeolocator{Location: loc}
}

func (g *StaticGeolocator) CurrentPosition(ctx context.Context) (model.UserLocation, error) {
	if err := ctx.Err(); err != nil {
		return model.UserLocation{}, err
	}
	return g.Location, nil
}

// DenyingGeolocator 模擬使用者拒絕授權
type DenyingGeolocator struct{}

func (DenyingGeolocator) CurrentPosition(ctx context.Context) (model.UserLocation, error) {
	return model.UserLocation{}, ErrPermissionDenied
}

const (
	ProviderNone   = "none"
	ProviderStatic = "static"
	ProviderDeny   = "deny"
)

// NewGeolocator 依設定選擇實作，none 回傳 nil 代表裝置不支援定位
func NewGeolocator(provider string, lat, lng, accuracy float64) (Geolocator, error) {
	switch provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderStatic:
		return NewStaticGeolocator(lat, lng, accuracy), nil
	case ProviderDeny:
		return DenyingGeolocator{}, nil
	default:
		return nil, errors.New("unknown geolocation provider: " + provider)
	}
}
