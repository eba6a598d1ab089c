package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine garde un instantané du nom et du prix remisé pris à l'ajout.
// Ils ne sont pas resynchronisés si le produit change ensuite.
type CartLine struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	ProductID   string    `json:"product"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	Qty         int       `json:"qty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CartLineView est une ligne jointe au résumé produit courant.
type CartLineView struct {
	CartLine
	Product *ProductSummary `json:"product"`
}

// CartSubtotal somme price*qty sur les instantanés du panier.
func CartSubtotal(lines []CartLine) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return total.InexactFloat64()
}
