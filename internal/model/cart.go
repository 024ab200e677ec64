package model

import "github.com/shopspring/decimal"

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart 同一時間只有一台購物車，且只屬於一個商家
type Cart struct {
	StoreID   string     `json:"storeId"`
	StoreName string     `json:"storeName"`
	Items     []CartItem `json:"items"`
	TableCode string     `json:"tableCode,omitempty"`
}

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = CloneCartItems(c.Items)
	return &cp
}

func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	if c == nil {
		return subtotal
	}
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func CloneCartItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	cp := make([]CartItem, len(items))
	copy(cp, items)
	return cp
}

type CartSummary struct {
	ItemCount  int             `json:"itemCount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	ServiceFee decimal.Decimal `json:"serviceFee"`
	Total      decimal.Decimal `json:"total"`
}
