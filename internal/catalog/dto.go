package catalog

import (
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
)

type catalogDTO struct {
	DemoLocation      coordinatesDTO    `yaml:"demo_location"`
	DemoUsers         []userDTO         `yaml:"demo_users"`
	Stores            []storeDTO        `yaml:"stores"`
	Reviews           []reviewDTO       `yaml:"reviews"`
	SeedNotifications []notificationDTO `yaml:"seed_notifications"`
	SeedOrders        []orderDTO        `yaml:"seed_orders"`
}

type coordinatesDTO struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type userDTO struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Avatar   string `yaml:"avatar"`
	Phone    string `yaml:"phone"`
}

func (u userDTO) toModel() model.Credential {
	return model.Credential{
		ID:       u.ID,
		Username: u.Username,
		Password: u.Password,
		Email:    u.Email,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Phone:    u.Phone,
	}
}

type storeDTO struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Category     string         `yaml:"category"`
	Image        string         `yaml:"image"`
	CoverImage   string         `yaml:"cover_image"`
	Rating       float64        `yaml:"rating"`
	ReviewCount  int            `yaml:"review_count"`
	Distance     int            `yaml:"distance"`
	DeliveryTime string         `yaml:"delivery_time"`
	IsOpen       bool           `yaml:"is_open"`
	OpeningHours string         `yaml:"opening_hours"`
	Address      string         `yaml:"address"`
	Phone        string         `yaml:"phone"`
	Coordinates  coordinatesDTO `yaml:"coordinates"`
	Products     []productDTO   `yaml:"products"`
}

func (s storeDTO) toModel() (model.Store, error) {
	category := model.StoreCategory(s.Category)
	if !category.IsValid() {
		return model.Store{}, fmt.Errorf("store %s: unknown category %q", s.ID, s.Category)
	}
	store := model.Store{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Category:     category,
		Image:        s.Image,
		CoverImage:   s.CoverImage,
		Rating:       s.Rating,
		ReviewCount:  s.ReviewCount,
		Distance:     s.Distance,
		DeliveryTime: s.DeliveryTime,
		IsOpen:       s.IsOpen,
		OpeningHours: s.OpeningHours,
		Address:      s.Address,
		Phone:        s.Phone,
		Coordinates:  model.Coordinates{Lat: s.Coordinates.Lat, Lng: s.Coordinates.Lng},
		Products:     make([]model.Product, 0, len(s.Products)),
	}
	for _, p := range s.Products {
		price, err := parsePrice("product "+p.ID, p.Price)
		if err != nil {
			return model.Store{}, err
		}
		store.Products = append(store.Products, model.Product{
			ID:          p.ID,
			StoreID:     s.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			Image:       p.Image,
			Category:    p.Category,
			IsAvailable: p.Available,
			IsPopular:   p.Popular,
		})
	}
	return store, nil
}

type productDTO struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Category    string `yaml:"category"`
	Available   bool   `yaml:"available"`
	Popular     bool   `yaml:"popular"`
}

type reviewDTO struct {
	ID         string    `yaml:"id"`
	StoreID    string    `yaml:"store_id"`
	UserID     string    `yaml:"user_id"`
	UserName   string    `yaml:"user_name"`
	UserAvatar string    `yaml:"user_avatar"`
	Rating     int       `yaml:"rating"`
	Comment    string    `yaml:"comment"`
	CreatedAt  time.Time `yaml:"created_at"`
}

func (r reviewDTO) toModel() model.Review {
	return model.Review{
		ID:         r.ID,
		StoreID:    r.StoreID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		UserAvatar: r.UserAvatar,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

type notificationDTO struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	Read    bool   `yaml:"read"`
	Age     string `yaml:"age"`
	OrderID string `yaml:"order_id"`
	StoreID string `yaml:"store_id"`
}

func (n notificationDTO) toModel(now time.Time) model.Notification {
	age, _ := time.ParseDuration(n.Age)
	notif := model.Notification{
		ID:        n.ID,
		Type:      model.NotificationType(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.Read,
		CreatedAt: now.Add(-age),
	}
	if n.OrderID != "" || n.StoreID != "" {
		notif.Data = &model.NotificationData{OrderID: n.OrderID, StoreID: n.StoreID}
	}
	return notif
}

type orderItemDTO struct {
	ProductID string `yaml:"product_id"`
	Quantity  int    `yaml:"quantity"`
}

type orderDTO struct {
	ID            string         `yaml:"id"`
	StoreID       string         `yaml:"store_id"`
	Items         []orderItemDTO `yaml:"items"`
	Status        string         `yaml:"status"`
	Subtotal      string         `yaml:"subtotal"`
	ServiceFee    string         `yaml:"service_fee"`
	Total         string         `yaml:"total"`
	TableCode     string         `yaml:"table_code"`
	PaymentMethod string         `yaml:"payment_method"`
	Age           string         `yaml:"age"`
}

// 歷史訂單金額照原始資料，不重新計算
func (o orderDTO) toModel(c *Catalog, now time.Time) (model.Order, error) {
	i, ok := c.storeIndex[o.StoreID]
	if !ok {
		return model.Order{}, fmt.Errorf("order %s: unknown store %s", o.ID, o.StoreID)
	}
	store := c.stores[i]

	status := model.OrderStatus(o.Status)
	if !status.IsValid() {
		return model.Order{}, fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	method := model.PaymentMethod(o.PaymentMethod)
	if !method.IsValid() {
		return model.Order{}, fmt.Errorf("order %s: unknown payment method %q", o.ID, o.PaymentMethod)
	}
	age, err := time.ParseDuration(o.Age)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s age: %w", o.ID, err)
	}

	order := model.Order{
		ID:            o.ID,
		StoreID:       store.ID,
		StoreName:     store.Name,
		StoreImage:    store.Image,
		Status:        status,
		TableCode:     o.TableCode,
		PaymentMethod: method,
		CreatedAt:     now.Add(-age),
	}
	for _, item := range o.Items {
		p, ok := c.productIndex[item.ProductID]
		if !ok {
			return model.Order{}, fmt.Errorf("order %s: unknown product %s", o.ID, item.ProductID)
		}
		order.Items = append(order.Items, model.CartItem{Product: p, Quantity: item.Quantity})
	}
	if order.Subtotal, err = parsePrice("order "+o.ID+" subtotal", o.Subtotal); err != nil {
		return model.Order{}, err
	}
	if order.ServiceFee, err = parsePrice("order "+o.ID+" service fee", o.ServiceFee); err != nil {
		return model.Order{}, err
	}
	if order.Total, err = parsePrice("order "+o.ID+" total", o.Total); err != nil {
		return model.Order{}, err
	}
	return order, nil
}
