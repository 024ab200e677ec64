package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/geo"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/pkg/util"
	"github.com/rs/zerolog"
)

const (
	MsgGeolocationUnavailable = "La geolocalización no está disponible en este dispositivo"
	MsgLocationFailed         = "No se pudo obtener tu ubicación"
)

type ILocationService interface {
	Restore(ctx context.Context) error
	// RequestPermission 取得定位成功回傳 true，失敗時改用預設座標並回傳 false
	RequestPermission(ctx context.Context) (bool, error)
	SkipPermission(ctx context.Context) error
	State() model.LocationState
	Location() *model.UserLocation
	PermissionStatus() model.PermissionStatus
}

type LocationConfig struct {
	Timeout time.Duration
	MaxAge  time.Duration
}

type LocationService struct {
	mu         sync.Mutex
	store      kv.Store
	geolocator geo.Geolocator
	fallback   model.UserLocation
	cfg        LocationConfig
	logger     zerolog.Logger
	now        func() time.Time

	status    model.PermissionStatus
	location  *model.UserLocation
	loading   bool
	errMsg    string
	lastFix   *model.UserLocation
	lastFixAt time.Time
}

var _ ILocationService = (*LocationService)(nil)

// NewLocationService geolocator 為 nil 代表裝置不支援定位
func NewLocationService(store kv.Store, geolocator geo.Geolocator, fallback model.UserLocation, cfg LocationConfig, logger zerolog.Logger) *LocationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultLocationTimeout
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = constants.DefaultLocationMaxAge
	}
	if util.IsNil(geolocator) {
		geolocator = nil
	}
	return &LocationService{
		store:      store,
		geolocator: geolocator,
		fallback:   fallback,
		cfg:        cfg,
		logger:     logger.With().Str("service", "location").Logger(),
		now:        time.Now,
		status:     model.PermissionPending,
	}
}

// Restore granted 使用上次的座標，denied/unavailable 使用預設座標，pending 沒有座標
func (s *LocationService) Restore(ctx context.Context) error {
	var status model.PermissionStatus
	found, err := restoreJSON(ctx, s.store, s.logger, constants.LocationPermissionKey, &status)
	if err != nil {
		return fmt.Errorf("restore location permission: %w", err)
	}
	if !found || !status.IsValid() {
		if found {
			s.logger.Warn().Str("status", string(status)).Msg("unknown permission status, reset to pending")
		}
		status = model.PermissionPending
	}

	var location *model.UserLocation
	switch status {
	case model.PermissionGranted:
		var saved model.UserLocation
		ok, err := restoreJSON(ctx, s.store, s.logger, constants.LastLocationKey, &saved)
		if err != nil {
			return fmt.Errorf("restore location: %w", err)
		}
		if ok {
			location = &saved
		}
	case model.PermissionDenied, model.PermissionUnavailable:
		fallback := s.fallback
		location = &fallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.location = location
	s.errMsg = ""
	return nil
}

func (s *LocationService) RequestPermission(ctx context.Context) (bool, error) {
	if s.geolocator == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.saveStatus(ctx, model.PermissionUnavailable); err != nil {
			return false, err
		}
		s.applyFallback(model.PermissionUnavailable, MsgGeolocationUnavailable)
		return false, nil
	}

	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	cached := s.cachedFixLocked()
	s.mu.Unlock()

	var (
		loc    model.UserLocation
		geoErr error
	)
	if cached != nil {
		loc = *cached
	} else {
		tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		loc, geoErr = s.geolocator.CurrentPosition(tctx)
		cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	// 呼叫端放棄等待，不改變狀態
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if geoErr != nil {
		s.logger.Warn().Err(geoErr).Msg("geolocation failed, use fallback location")
		if err := s.saveStatus(ctx, model.PermissionDenied); err != nil {
			return false, err
		}
		s.applyFallback(model.PermissionDenied, MsgLocationFailed)
		return false, nil
	}

	if err := kv.SetJSON(ctx, s.store, constants.LastLocationKey, loc); err != nil {
		return false, fmt.Errorf("save location: %w", err)
	}
	if err := s.saveStatus(ctx, model.PermissionGranted); err != nil {
		return false, err
	}
	s.status = model.PermissionGranted
	s.location = &loc
	s.errMsg = ""
	if cached == nil {
		s.lastFix = &loc
		s.lastFixAt = s.now()
	}
	return true, nil
}

func (s *LocationService) SkipPermission(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveStatus(ctx, model.PermissionDenied); err != nil {
		return err
	}
	s.applyFallback(model.PermissionDenied, "")
	return nil
}

func (s *LocationService) State() model.LocationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := model.LocationState{
		Status:    s.status,
		IsLoading: s.loading,
		Error:     s.errMsg,
	}
	if s.location != nil {
		loc := *s.location
		state.Location = &loc
	}
	return state
}

func (s *LocationService) Location() *model.UserLocation {
	return s.State().Location
}

func (s *LocationService) PermissionStatus() model.PermissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// cachedFixLocked 最近一次定位仍在 MaxAge 內時直接沿用
func (s *LocationService) cachedFixLocked() *model.UserLocation {
	if s.lastFix == nil || s.now().Sub(s.lastFixAt) > s.cfg.MaxAge {
		return nil
	}
	loc := *s.lastFix
	return &loc
}

func (s *LocationService) saveStatus(ctx context.Context, status model.PermissionStatus) error {
	if err := kv.SetJSON(ctx, s.store, constants.LocationPermissionKey, status); err != nil {
		return fmt.Errorf("save location permission: %w", err)
	}
	return nil
}

func (s *LocationService) applyFallback(status model.PermissionStatus, errMsg string) {
	fallback := s.fallback
	s.status = status
	s.location = &fallback
	s.errMsg = errMsg
}
