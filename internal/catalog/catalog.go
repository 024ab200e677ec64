package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog 靜態資料，載入後不可變
// 所有讀取方法回傳複本
type Catalog struct {
	stores        []model.Store
	storeIndex    map[string]int
	productIndex  map[string]model.Product
	reviews       []model.Review
	demoUsers     []model.Credential
	demoLocation  model.UserLocation
	notifications []notificationDTO
	orders        []orderDTO
}

// Load 解析內建的 catalog.yaml
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustLoad 內建資料解析失敗屬於程式錯誤
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var doc catalogDTO
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		storeIndex:   make(map[string]int, len(doc.Stores)),
		productIndex: make(map[string]model.Product),
		demoLocation: model.UserLocation{Lat: doc.DemoLocation.Lat, Lng: doc.DemoLocation.Lng},
	}

	for _, s := range doc.Stores {
		store, err := s.toModel()
		if err != nil {
			return nil, err
		}
		if _, dup := c.storeIndex[store.ID]; dup {
			return nil, fmt.Errorf("duplicate store id %s", store.ID)
		}
		c.storeIndex[store.ID] = len(c.stores)
		c.stores = append(c.stores, store)
		for _, p := range store.Products {
			c.productIndex[p.ID] = p
		}
	}

	for _, r := range doc.Reviews {
		c.reviews = append(c.reviews, r.toModel())
	}
	for _, u := range doc.DemoUsers {
		c.demoUsers = append(c.demoUsers, u.toModel())
	}

	for _, n := range doc.SeedNotifications {
		if _, err := time.ParseDuration(n.Age); err != nil {
			return nil, fmt.Errorf("notification %s age: %w", n.ID, err)
		}
	}
	c.notifications = doc.SeedNotifications

	for _, o := range doc.SeedOrders {
		if _, err := o.toModel(c, time.Now()); err != nil {
			return nil, err
		}
	}
	c.orders = doc.SeedOrders

	return c, nil
}

func (c *Catalog) Stores() []model.Store {
	stores := make([]model.Store, len(c.stores))
	for i, s := range c.stores {
		stores[i] = cloneStore(s)
	}
	return stores
}

func (c *Catalog) StoreByID(id string) (model.Store, bool) {
	i, ok := c.storeIndex[id]
	if !ok {
		return model.Store{}, false
	}
	return cloneStore(c.stores[i]), true
}

func (c *Catalog) ProductByID(id string) (model.Product, bool) {
	p, ok := c.productIndex[id]
	return p, ok
}

func (c *Catalog) ReviewsByStore(storeID string) []model.Review {
	reviews := make([]model.Review, 0)
	for _, r := range c.reviews {
		if r.StoreID == storeID {
			reviews = append(reviews, r)
		}
	}
	return reviews
}

// SearchStores 名稱或描述不分大小寫包含 query，category 為空代表全部
// 結果依距離由近到遠
func (c *Catalog) SearchStores(query string, category model.StoreCategory) []model.Store {
	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]model.Store, 0, len(c.stores))
	for _, s := range c.stores {
		if category != "" && s.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			continue
		}
		result = append(result, cloneStore(s))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	return result
}

func (c *Catalog) DemoUsers() []model.Credential {
	users := make([]model.Credential, len(c.demoUsers))
	copy(users, c.demoUsers)
	return users
}

func (c *Catalog) DemoLocation() model.UserLocation {
	return c.demoLocation
}

// SeedNotifications 時間相對於 now
func (c *Catalog) SeedNotifications(now time.Time) []model.Notification {
	result := make([]model.Notification, 0, len(c.notifications))
	for _, n := range c.notifications {
		result = append(result, n.toModel(now))
	}
	return result
}

func (c *Catalog) SeedOrderHistory(now time.Time) []model.Order {
	result := make([]model.Order, 0, len(c.orders))
	for _, o := range c.orders {
		// Parse 時已驗證過
		order, _ := o.toModel(c, now)
		result = append(result, order)
	}
	return result
}

func cloneStore(s model.Store) model.Store {
	cp := s
	cp.Products = make([]model.Product, len(s.Products))
	copy(cp.Products, s.Products)
	return cp
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q: %w", field, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: negative amount %q", field, raw)
	}
	return d, nil
}
