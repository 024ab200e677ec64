package catalog

import (
	"testing"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	stores := c.Stores()
	require.Len(t, stores, 5)
	for _, s := range stores {
		assert.Len(t, s.Products, 6, s.ID)
		for _, p := range s.Products {
			assert.Equal(t, s.ID, p.StoreID)
			assert.False(t, p.Price.IsNegative())
		}
	}

	p, ok := c.ProductByID("p1-1")
	require.True(t, ok)
	assert.Equal(t, "Barra de pan artesanal", p.Name)
	assert.True(t, decimal.RequireFromString("1.50").Equal(p.Price))
	assert.True(t, p.IsPopular)

	loc := c.DemoLocation()
	assert.Equal(t, 40.4168, loc.Lat)
	assert.Equal(t, -3.7038, loc.Lng)
}

func TestCatalog_DemoUsers(t *testing.T) {
	c := MustLoad()
	users := c.DemoUsers()
	require.Len(t, users, 1)
	assert.Equal(t, "paco", users[0].Username)
	assert.Equal(t, "12345", users[0].Password)
	assert.Equal(t, "paco@example.com", users[0].Email)
}

func TestCatalog_StoreByIDReturnsCopy(t *testing.T) {
	c := MustLoad()
	s, ok := c.StoreByID("store-2")
	require.True(t, ok)
	assert.Equal(t, "Heladería Polar", s.Name)

	s.Products[0].Name = "changed"
	again, _ := c.StoreByID("store-2")
	assert.Equal(t, "Helado de chocolate", again.Products[0].Name)

	_, ok = c.StoreByID("store-99")
	assert.False(t, ok)
}

func TestCatalog_ReviewsByStore(t *testing.T) {
	c := MustLoad()
	assert.Len(t, c.ReviewsByStore("store-1"), 2)
	assert.Len(t, c.ReviewsByStore("store-2"), 1)
	assert.Empty(t, c.ReviewsByStore("store-5"))

	r := c.ReviewsByStore("store-2")[0]
	assert.Equal(t, 2024, r.CreatedAt.Year())
	assert.Equal(t, time.January, r.CreatedAt.Month())
	assert.Equal(t, 18, r.CreatedAt.Day())
}

func TestCatalog_SearchStores(t *testing.T) {
	c := MustLoad()

	testCases := []struct {
		name     string
		query    string
		category model.StoreCategory
		wantIDs  []string
	}{
		{name: "all sorted by distance", wantIDs: []string{"store-1", "store-2", "store-3", "store-4", "store-5"}},
		{name: "case insensitive name", query: "HELADERÍA", wantIDs: []string{"store-2"}},
		{name: "matches description", query: "smoothies", wantIDs: []string{"store-4"}},
		{name: "category filter", category: model.StoreCategoryCafeteria, wantIDs: []string{"store-3"}},
		{name: "query and category", query: "pan", category: model.StoreCategoryBocateria, wantIDs: []string{}},
		{name: "no match", query: "sushi", wantIDs: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.SearchStores(tc.query, tc.category)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestCatalog_Seeds(t *testing.T) {
	c := MustLoad()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	notifs := c.SeedNotifications(now)
	require.Len(t, notifs, 3)
	assert.Equal(t, "notif-1", notifs[0].ID)
	assert.Equal(t, model.NotificationTypeOrderStatus, notifs[0].Type)
	require.NotNil(t, notifs[0].Data)
	assert.Equal(t, "order-1", notifs[0].Data.OrderID)
	assert.Equal(t, now.Add(-time.Hour), notifs[1].CreatedAt)
	assert.True(t, notifs[2].IsRead)
	assert.Nil(t, notifs[2].Data)

	orders := c.SeedOrderHistory(now)
	require.Len(t, orders, 2)
	first := orders[0]
	assert.Equal(t, "order-hist-1", first.ID)
	assert.Equal(t, "Panadería La Espiga", first.StoreName)
	assert.Equal(t, model.OrderStatusDelivered, first.Status)
	assert.Equal(t, model.PaymentMethodCard, first.PaymentMethod)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 2, first.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.70").Equal(first.Total))
	assert.Equal(t, now.Add(-48*time.Hour), first.CreatedAt)
	assert.Equal(t, model.PaymentMethodBizum, orders[1].PaymentMethod)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "bad yaml", data: "stores: ["},
		{name: "bad category", data: "stores:\n  - id: s\n    category: sushi\n"},
		{name: "bad price", data: "stores:\n  - id: s\n    category: snacks\n    products:\n      - { id: p, price: abc }\n"},
		{name: "negative price", data: "stores:\n  - id: s\n    category: snacks\n    products:\n      - { id: p, price: \"-1\" }\n"},
		{name: "unknown product in order", data: "stores:\n  - id: s\n    category: snacks\nseed_orders:\n  - id: o\n    store_id: s\n    status: delivered\n    payment_method: card\n    age: 1h\n    items:\n      - { product_id: nope, quantity: 1 }\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
		})
	}
}
