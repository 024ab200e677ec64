package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api/dto"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/rs/zerolog"
)

type LocationHandler struct {
	locationService service.ILocationService
	logger          zerolog.Logger
}

func NewLocationHandler(locationService service.ILocationService, logger zerolog.Logger) *LocationHandler {
	if locationService == nil {
		panic("locationService cannot be nil")
	}
	return &LocationHandler{locationService: locationService, logger: logger}
}

// GET /location
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	api.SuccessJSON(w, h.locationService.State(), nil)
}

// POST /location/request
// 拒絕或無法定位時仍回 200，座標為預設位置
func (h *LocationHandler) Request(w http.ResponseWriter, r *http.Request) {
	granted, err := h.locationService.RequestPermission(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, dto.LocationRequestResponse{
		Granted: granted,
		State:   h.locationService.State(),
	}, nil)
}

// POST /location/skip
func (h *LocationHandler) Skip(w http.ResponseWriter, r *http.Request) {
	if err := h.locationService.SkipPermission(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, h.locationService.State(), nil)
}
