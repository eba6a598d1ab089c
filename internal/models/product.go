package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string    `json:"id" db:"product_id"`
	Name        string    `json:"pname" db:"pname"`
	Description string    `json:"pdesc" db:"pdesc"`
	Price       float64   `json:"price" db:"price"`
	Offer       float64   `json:"offer" db:"offer"` // pourcentage 0-100
	StockCount  int       `json:"stock_count" db:"stock_count"`
	Brand       string    `json:"brand" db:"brand"`
	Material    string    `json:"material" db:"material"`
	Category    string    `json:"category" db:"category"`
	Rating      float64   `json:"rating" db:"rating"`
	ImageURLs   []string  `json:"image_urls" db:"image_urls"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DiscountedPrice = floor(price - price*offer/100)
func (p Product) DiscountedPrice() float64 {
	price := decimal.NewFromFloat(p.Price)
	cut := price.Mul(decimal.NewFromFloat(p.Offer)).Div(decimal.NewFromInt(100))
	return price.Sub(cut).Floor().InexactFloat64()
}

// ProductSummary est la vue produit jointe aux lignes de panier et aux commandes.
type ProductSummary struct {
	ID              string   `json:"_id"`
	Name            string   `json:"pname"`
	Description     string   `json:"pdesc"`
	Price           float64  `json:"price"`
	Offer           float64  `json:"offer"`
	DiscountedPrice float64  `json:"discountedPrice"`
	StockCount      int      `json:"stock_count"`
	Brand           string   `json:"brand"`
	Rating          float64  `json:"rating"`
	ImageURLs       []string `json:"image_urls"`
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Offer:           p.Offer,
		DiscountedPrice: p.DiscountedPrice(),
		StockCount:      p.StockCount,
		Brand:           p.Brand,
		Rating:          p.Rating,
		ImageURLs:       p.ImageURLs,
	}
}
