package services

import (
	"context"
	"log"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

// ProductService couvre le ledger produit : fiche, prix/remise et stock.
type ProductService struct {
	products store.ProductStore
	tx       store.TxManager
}

func NewProductService(s store.Store) *ProductService {
	return &ProductService{products: s.Products, tx: s.Tx}
}

func validateProduct(p models.Product) error {
	var fields []apperr.FieldError
	if p.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "pname", Message: "Product name is required"})
	}
	if p.Price < 0 {
		fields = append(fields, apperr.FieldError{Field: "price", Message: "Price cannot be negative"})
	}
	if p.Offer < 0 || p.Offer > 100 {
		fields = append(fields, apperr.FieldError{Field: "offer", Message: "Offer must be between 0 and 100"})
	}
	if p.StockCount < 0 {
		fields = append(fields, apperr.FieldError{Field: "stock_count", Message: "Stock count cannot be negative"})
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields...)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	out, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching products", err)
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found", "Something went wrong while fetching product")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.ID = ""
	if err := s.products.CreateProduct(ctx, &p); err != nil {
		return nil, apperr.Internal("Something went wrong while creating product", err)
	}
	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID)
	return &p, nil
}

// Update remplace la fiche mais jamais stock_count : le stock ne bouge que
// par AdjustStock, checkout et annulation.
func (s *ProductService) Update(ctx context.Context, id string, p models.Product) (*models.Product, error) {
	var out *models.Product
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, _ store.Tx) error {
		cur, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return storeErr(err, "Product not found", "Something went wrong while updating product")
		}
		p.ID = id
		p.StockCount = cur.StockCount
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := s.products.UpdateProduct(ctx, &p); err != nil {
			return storeErr(err, "Product not found", "Something went wrong while updating product")
		}
		out = &p
		return nil
	})
	return out, err
}

type StockAdjustment struct {
	Type     models.MovementType // restock ou adjustment
	Quantity int
	Reason   string
	UserID   string
}

// AdjustStock : restock ajoute Quantity, adjustment fixe la valeur absolue.
func (s *ProductService) AdjustStock(ctx context.Context, productID string, adj StockAdjustment) (*models.StockMovement, error) {
	var (
		prev, next int
		err        error
	)
	switch adj.Type {
	case models.MovementRestock:
		if adj.Quantity < 1 {
			return nil, apperr.Validation("Validation failed",
				apperr.FieldError{Field: "quantity", Message: "Quantity must be at least 1"})
		}
		prev, next, err = s.products.IncrementStock(ctx, productID, adj.Quantity)
	case models.MovementAdjustment:
		if adj.Quantity < 0 {
			return nil, apperr.Validation("Validation failed",
				apperr.FieldError{Field: "quantity", Message: "Stock count cannot be negative"})
		}
		prev, next, err = s.products.SetStock(ctx, productID, adj.Quantity)
	default:
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "type", Message: "Type must be restock or adjustment"})
	}
	if err != nil {
		return nil, storeErr(err, "Product not found", "Something went wrong while updating stock")
	}

	mv := &models.StockMovement{
		ProductID: productID,
		Type:      adj.Type,
		Quantity:  adj.Quantity,
		PrevStock: prev,
		NewStock:  next,
		Reason:    adj.Reason,
		UserID:    adj.UserID,
	}
	if err := s.products.RecordMovement(ctx, mv); err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}
	log.Printf("✅ Stock mis à jour pour %s: %d -> %d", productID, prev, next)
	return mv, nil
}

func (s *ProductService) Movements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, storeErr(err, "Product not found", "Something went wrong while fetching movements")
	}
	out, err := s.products.ListMovements(ctx, productID, limit)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching movements", err)
	}
	return out, nil
}
