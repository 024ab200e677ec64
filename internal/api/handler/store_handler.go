package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type StoreHandler struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

func NewStoreHandler(c *catalog.Catalog, logger zerolog.Logger) *StoreHandler {
	if c == nil {
		panic("catalog cannot be nil")
	}
	return &StoreHandler{catalog: c, logger: logger}
}

// GET /stores?q=&category=
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	category := model.StoreCategory(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		writeError(w, r, h.logger, fmt.Errorf("%w: unknown category %q", errBadRequest, category))
		return
	}
	api.SuccessJSON(w, h.catalog.SearchStores(r.URL.Query().Get("q"), category), nil)
}

// GET /stores/{storeID}
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.catalog.StoreByID(chi.URLParam(r, "storeID"))
	if !ok {
		writeError(w, r, h.logger, service.ErrStoreNotFound)
		return
	}
	api.SuccessJSON(w, store, nil)
}

// GET /stores/{storeID}/reviews
func (h *StoreHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	if _, ok := h.catalog.StoreByID(storeID); !ok {
		writeError(w, r, h.logger, service.ErrStoreNotFound)
		return
	}
	api.SuccessJSON(w, h.catalog.ReviewsByStore(storeID), nil)
}
