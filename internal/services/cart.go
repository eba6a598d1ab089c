package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

// CartService agrège les lignes produit → quantité de chaque utilisateur.
type CartService struct {
	products store.ProductStore
	carts    store.CartStore
	tx       store.TxManager
}

func NewCartService(s store.Store) *CartService {
	return &CartService{products: s.Products, carts: s.Carts, tx: s.Tx}
}

// AddItem fusionne avec la ligne existante (user, product) ou en crée une
// avec l'instantané nom + prix remisé. created indique une nouvelle ligne.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (line *models.CartLine, created bool, err error) {
	if qty < 1 {
		return nil, false, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "qty", Message: "Quantity must be at least 1"})
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, storeErr(err, "Product not found", "Something went wrong while adding to cart")
	}

	line, created, err = s.carts.MergeLine(ctx, &models.CartLine{
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.DiscountedPrice(),
		Qty:         qty,
	})
	if err != nil {
		return nil, false, apperr.Internal("Something went wrong while adding to cart", err)
	}
	if !created {
		return line, false, nil
	}
	log.Printf("🛒 Ligne ajoutée au panier de %s: %s x%d", userID, product.Name, qty)
	return line, true, nil
}

// ListItems joint chaque ligne au résumé produit courant.
// Un produit disparu laisse Product à nil.
func (s *CartService) ListItems(ctx context.Context, userID string) ([]models.CartLineView, error) {
	lines, err := s.carts.ListLines(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching cart", err)
	}
	views := make([]models.CartLineView, 0, len(lines))
	for _, l := range lines {
		v := models.CartLineView{CartLine: l}
		p, err := s.products.GetProduct(ctx, l.ProductID)
		switch {
		case err == nil:
			sum := p.Summary()
			v.Product = &sum
		case !errors.Is(err, store.ErrNotFound):
			return nil, apperr.Internal("Something went wrong while fetching cart", err)
		}
		views = append(views, v)
	}
	return views, nil
}

// UpdateQty contrôle qty contre le stock courant. Contrôle et écriture
// passent par la même unité de travail.
func (s *CartService) UpdateQty(ctx context.Context, userID, lineID string, qty int) (*models.CartLine, error) {
	if qty < 1 {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "qty", Message: "Quantity must be at least 1"})
	}

	var updated *models.CartLine
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, _ store.Tx) error {
		line, err := s.carts.GetLine(ctx, userID, lineID)
		if err != nil {
			return storeErr(err, "Cart item not found", "Something went wrong while updating cart")
		}
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			return storeErr(err, "Product not found", "Something went wrong while updating cart")
		}
		if qty > product.StockCount {
			return apperr.OutOfStock(fmt.Sprintf("Only %d items available in stock", product.StockCount))
		}
		line.Qty = qty
		if err := s.carts.SaveLine(ctx, line); err != nil {
			return apperr.Internal("Something went wrong while updating cart", err)
		}
		updated = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) error {
	err := s.carts.DeleteLine(ctx, userID, lineID)
	return storeErr(err, "Cart item not found", "Something went wrong while removing from cart")
}

// ClearCart réussit aussi sur un panier déjà vide.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.ClearLines(ctx, userID); err != nil {
		return apperr.Internal("Something went wrong while clearing cart", err)
	}
	return nil
}
