package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type ICartService interface {
	Restore(ctx context.Context) error
	// AddToCart 商品屬於另一個商家時，原購物車會被直接捨棄並以新商家重建，不會詢問
	AddToCart(ctx context.Context, storeName string, product model.Product, quantity int, notes string) (*model.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*model.Cart, error)
	// UpdateQuantity quantity <= 0 等同 RemoveFromCart
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error)
	UpdateNotes(ctx context.Context, productID string, notes string) (*model.Cart, error)
	SetTableCode(ctx context.Context, code string) (*model.Cart, error)
	ClearCart(ctx context.Context) error
	// ClearCartIfUnchanged 購物車在 revision 之後被修改過時不清空，回傳 false
	ClearCartIfUnchanged(ctx context.Context, revision uint64) (bool, error)
	Cart() *model.Cart
	Snapshot() CartSnapshot
	ItemCount() int
	Subtotal() decimal.Decimal
	ServiceFee() decimal.Decimal
	Total() decimal.Decimal
	Summary() model.CartSummary
}

type CartConfig struct {
	ServiceFeePercent decimal.Decimal
	MinServiceFee     decimal.Decimal
}

func DefaultCartConfig() CartConfig {
	return CartConfig{
		ServiceFeePercent: decimal.RequireFromString(constants.DefaultServiceFeePercent),
		MinServiceFee:     decimal.RequireFromString(constants.DefaultMinServiceFee),
	}
}

// CartSnapshot 同一把鎖下取得的購物車與金額
type CartSnapshot struct {
	Cart     *model.Cart
	Summary  model.CartSummary
	Revision uint64
}

// CartService 先寫入 store 成功後才更新記憶體狀態
// revision 每次成功寫入遞增
type CartService struct {
	mu       sync.Mutex
	store    kv.Store
	logger   zerolog.Logger
	cfg      CartConfig
	cart     *model.Cart
	revision uint64
}

var _ ICartService = (*CartService)(nil)

func NewCartService(store kv.Store, cfg CartConfig, logger zerolog.Logger) *CartService {
	return &CartService{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

func (s *CartService) Restore(ctx context.Context) error {
	var cart model.Cart
	found, err := restoreJSON(ctx, s.store, s.logger, constants.CartKey, &cart)
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	if found && len(cart.Items) > 0 {
		s.cart = &cart
	}
	s.revision++
	return nil
}

func (s *CartService) AddToCart(ctx context.Context, storeName string, product model.Product, quantity int, notes string) (*model.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next *model.Cart
	if s.cart == nil || s.cart.StoreID != product.StoreID {
		if s.cart != nil {
			s.logger.Debug().
				Str("from_store", s.cart.StoreID).
				Str("to_store", product.StoreID).
				Msg("cart replaced by another store")
		}
		next = &model.Cart{
			StoreID:   product.StoreID,
			StoreName: storeName,
			Items:     []model.CartItem{{Product: product, Quantity: quantity, Notes: notes}},
		}
	} else {
		next = s.cart.Clone()
		if storeName != "" {
			next.StoreName = storeName
		}
		if i := next.IndexOf(product.ID); i >= 0 {
			next.Items[i].Quantity += quantity
			if notes != "" {
				next.Items[i].Notes = notes
			}
		} else {
			next.Items = append(next.Items, model.CartItem{Product: product, Quantity: quantity, Notes: notes})
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, productID string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

func (s *CartService) removeLocked(ctx context.Context, productID string) (*model.Cart, error) {
	if s.cart == nil {
		return nil, nil
	}
	i := s.cart.IndexOf(productID)
	if i < 0 {
		return s.cart.Clone(), nil
	}

	next := s.cart.Clone()
	next.Items = append(next.Items[:i], next.Items[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}
	return s.updateItemLocked(ctx, productID, func(item *model.CartItem) {
		item.Quantity = quantity
	})
}

func (s *CartService) UpdateNotes(ctx context.Context, productID string, notes string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateItemLocked(ctx, productID, func(item *model.CartItem) {
		item.Notes = notes
	})
}

func (s *CartService) updateItemLocked(ctx context.Context, productID string, fn func(item *model.CartItem)) (*model.Cart, error) {
	if s.cart == nil {
		return nil, nil
	}
	i := s.cart.IndexOf(productID)
	if i < 0 {
		return s.cart.Clone(), nil
	}

	next := s.cart.Clone()
	fn(&next.Items[i])
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

// SetTableCode 沒有購物車時不做任何事
func (s *CartService) SetTableCode(ctx context.Context, code string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart == nil {
		return nil, nil
	}
	next := s.cart.Clone()
	next.TableCode = code
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return s.cart.Clone(), nil
}

func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, nil)
}

func (s *CartService) ClearCartIfUnchanged(ctx context.Context, revision uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision != revision {
		return false, nil
	}
	if err := s.commit(ctx, nil); err != nil {
		return false, err
	}
	return true, nil
}

// commit 空購物車一律以 nil 表示並移除 key
func (s *CartService) commit(ctx context.Context, next *model.Cart) error {
	if next == nil || len(next.Items) == 0 {
		if err := s.store.Remove(ctx, constants.CartKey); err != nil {
			return fmt.Errorf("remove cart: %w", err)
		}
		s.cart = nil
		s.revision++
		return nil
	}

	if err := kv.SetJSON(ctx, s.store, constants.CartKey, next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.cart = next
	s.revision++
	return nil
}

func (s *CartService) Cart() *model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

func (s *CartService) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

func (s *CartService) ServiceFee() decimal.Decimal {
	return s.serviceFee(s.Subtotal())
}

func (s *CartService) Total() decimal.Decimal {
	subtotal := s.Subtotal()
	return subtotal.Add(s.serviceFee(subtotal))
}

func (s *CartService) Summary() model.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *CartService) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartSnapshot{
		Cart:     s.cart.Clone(),
		Summary:  s.summaryLocked(),
		Revision: s.revision,
	}
}

func (s *CartService) summaryLocked() model.CartSummary {
	subtotal := s.cart.Subtotal()
	fee := s.serviceFee(subtotal)
	return model.CartSummary{
		ItemCount:  s.cart.ItemCount(),
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      subtotal.Add(fee),
	}
}

// serviceFee 空購物車為 0，否則 max(subtotal * pct, min)
// 不做四捨五入，顯示時才取到分
func (s *CartService) serviceFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return decimal.Max(subtotal.Mul(s.cfg.ServiceFeePercent), s.cfg.MinServiceFee)
}
