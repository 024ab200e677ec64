package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type StoreCategory string

const (
	StoreCategoryPanaderia StoreCategory = "panaderia"
	StoreCategoryHeladeria StoreCategory = "heladeria"
	StoreCategoryCafeteria StoreCategory = "cafeteria"
	StoreCategoryFruteria  StoreCategory = "fruteria"
	StoreCategoryBocateria StoreCategory = "bocateria"
	StoreCategoryBebidas   StoreCategory = "bebidas"
	StoreCategorySnacks    StoreCategory = "snacks"
)

var StoreCategoryLabels = map[StoreCategory]string{
	StoreCategoryPanaderia: "Panadería",
	StoreCategoryHeladeria: "Heladería",
	StoreCategoryCafeteria: "Cafetería",
	StoreCategoryFruteria:  "Frutería",
	StoreCategoryBocateria: "Bocatería",
	StoreCategoryBebidas:   "Bebidas",
	StoreCategorySnacks:    "Snacks",
}

func (c StoreCategory) IsValid() bool {
	_, ok := StoreCategoryLabels[c]
	return ok
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Store struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     StoreCategory `json:"category"`
	Image        string        `json:"image"`
	CoverImage   string        `json:"coverImage"`
	Rating       float64       `json:"rating"`
	ReviewCount  int           `json:"reviewCount"`
	Distance     int           `json:"distance"` // 公尺
	DeliveryTime string        `json:"deliveryTime"`
	IsOpen       bool          `json:"isOpen"`
	OpeningHours string        `json:"openingHours"`
	Address      string        `json:"address"`
	Phone        string        `json:"phone"`
	Coordinates  Coordinates   `json:"coordinates"`
	Products     []Product     `json:"products"`
}

type Product struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	IsAvailable bool            `json:"isAvailable"`
	IsPopular   bool            `json:"isPopular,omitempty"`
}

type Review struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"storeId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}
