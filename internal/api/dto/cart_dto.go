package dto

import "github.com/RoyceAzure/lab/parkeat/internal/model"

// AddCartItemDTO quantity 未帶時為 1
type AddCartItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type UpdateCartItemDTO struct {
	Quantity *int    `json:"quantity,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type TableCodeDTO struct {
	TableCode string `json:"tableCode"`
}

type CartResponse struct {
	Cart    *model.Cart       `json:"cart"`
	Summary model.CartSummary `json:"summary"`
}
