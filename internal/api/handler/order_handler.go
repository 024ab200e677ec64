package handler

import (
	"fmt"
	"net/http"

	"github.com/RoyceAzure/lab/parkeat/internal/api/dto"
	"github.com/RoyceAzure/lab/parkeat/internal/service"
	"github.com/RoyceAzure/rj/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type OrderHandler struct {
	orderService    service.IOrderService
	checkoutService service.ICheckoutService
	logger          zerolog.Logger
}

func NewOrderHandler(orderService service.IOrderService, checkoutService service.ICheckoutService, logger zerolog.Logger) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// POST /checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var checkoutDTO dto.CheckoutDTO
	if err := decodeJSON(r, &checkoutDTO); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	order, err := h.checkoutService.Checkout(r.Context(), service.CheckoutRequest{
		PaymentMethod: checkoutDTO.PaymentMethod,
		Notes:         checkoutDTO.Notes,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created(w, order)
}

// GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	res := dto.OrdersResponse{Orders: h.orderService.Orders()}
	if current := h.orderService.CurrentOrder(); current != nil {
		res.CurrentOrderID = current.ID
	}
	api.SuccessJSON(w, res, nil)
}

// GET /orders/{orderID}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.orderService.GetOrderByID(chi.URLParam(r, "orderID"))
	if !ok {
		writeError(w, r, h.logger, service.ErrOrderNotExist)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// POST /orders/{orderID}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.CancelOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}
