package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api/dto"
	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	cartService service.ICartService
	catalog     *catalog.Catalog
	logger      zerolog.Logger
}

func NewCartHandler(cartService service.ICartService, c *catalog.Catalog, logger zerolog.Logger) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	if c == nil {
		panic("catalog cannot be nil")
	}
	return &CartHandler{cartService: cartService, catalog: c, logger: logger}
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int) {
	snapshot := h.cartService.Snapshot()
	api.JSON(w, status, api.Response{
		Success: true,
		Data:    dto.CartResponse{Cart: snapshot.Cart, Summary: snapshot.Summary},
	})
}

// GET /cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK)
}

// POST /cart/items
// 商品屬於其他商家時會清空原購物車
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var addDTO dto.AddCartItemDTO
	if err := decodeJSON(r, &addDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	product, ok := h.catalog.ProductByID(addDTO.ProductID)
	if !ok {
		writeError(w, r, h.logger, service.ErrProductNotFound)
		return
	}
	store, ok := h.catalog.StoreByID(product.StoreID)
	if !ok {
		writeError(w, r, h.logger, service.ErrStoreNotFound)
		return
	}

	quantity := 1
	if addDTO.Quantity != nil {
		quantity = *addDTO.Quantity
	}
	if _, err := h.cartService.AddToCart(r.Context(), store.Name, product, quantity, addDTO.Notes); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, http.StatusCreated)
}

// PATCH /cart/items/{productID}
// quantity <= 0 等同移除
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var updateDTO dto.UpdateCartItemDTO
	if err := decodeJSON(r, &updateDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cart := h.cartService.Cart()
	if cart == nil || cart.IndexOf(productID) < 0 {
		writeError(w, r, h.logger, errItemNotInCart)
		return
	}

	ctx := r.Context()
	if updateDTO.Notes != nil {
		if _, err := h.cartService.UpdateNotes(ctx, productID, *updateDTO.Notes); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	if updateDTO.Quantity != nil {
		if _, err := h.cartService.UpdateQuantity(ctx, productID, *updateDTO.Quantity); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	h.writeCart(w, http.StatusOK)
}

// DELETE /cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.cartService.RemoveFromCart(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// PUT /cart/table
func (h *CartHandler) SetTableCode(w http.ResponseWriter, r *http.Request) {
	var tableDTO dto.TableCodeDTO
	if err := decodeJSON(r, &tableDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	cart, err := h.cartService.SetTableCode(r.Context(), tableDTO.TableCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if cart == nil {
		writeError(w, r, h.logger, service.ErrCartEmpty)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	noContent(w)
}
