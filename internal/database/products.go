package database

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

// maxCASAttempts borne la boucle lecture / UPDATE ... IF sous contention.
const maxCASAttempts = 16

const productColumns = `product_id, pname, pdesc, price, offer, stock_count, brand, material, category, rating, image_urls, created_at, updated_at`

func productDest(p *models.Product) []interface{} {
	return []interface{}{&p.ID, &p.Name, &p.Description, &p.Price, &p.Offer, &p.StockCount,
		&p.Brand, &p.Material, &p.Category, &p.Rating, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt}
}

func (s *Scylla) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.writeProduct(ctx, p)
}

func (s *Scylla) writeProduct(ctx context.Context, p *models.Product) error {
	err := s.q(ctx, `INSERT INTO %s.products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Price, p.Offer, p.StockCount,
		p.Brand, p.Material, p.Category, p.Rating, p.ImageURLs, p.CreatedAt, p.UpdatedAt,
	).Exec()
	if err != nil {
		return fmt.Errorf("insertion produit: %w", err)
	}
	return nil
}

func (s *Scylla) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.q(ctx, `SELECT `+productColumns+` FROM %s.products WHERE product_id = ?`, id).Scan(productDest(&p)...); err != nil {
		return nil, notFound(err, "lecture produit")
	}
	return &p, nil
}

func (s *Scylla) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.q(ctx, `SELECT `+productColumns+` FROM %s.products`).Iter()
	out := []models.Product{}
	for {
		var p models.Product
		if !iter.Scan(productDest(&p)...) {
			break
		}
		out = append(out, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste produits: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateProduct réécrit la fiche sans toucher stock_count, qui n'est
// modifié que par les LWT ci-dessous.
func (s *Scylla) UpdateProduct(ctx context.Context, p *models.Product) error {
	cur, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	err = s.q(ctx, `UPDATE %s.products SET pname = ?, pdesc = ?, price = ?, offer = ?, brand = ?, material = ?,
		category = ?, rating = ?, image_urls = ?, updated_at = ? WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.Offer, p.Brand, p.Material,
		p.Category, p.Rating, p.ImageURLs, p.UpdatedAt, p.ID,
	).Exec()
	if err != nil {
		return fmt.Errorf("mise à jour produit: %w", err)
	}
	return nil
}

// casStock applique apply à stock_count par compare-and-set, en relisant
// la valeur courante à chaque échec.
func (s *Scylla) casStock(ctx context.Context, id string, apply func(cur int) (int, error)) (int, int, error) {
	var cur int
	if err := s.q(ctx, `SELECT stock_count FROM %s.products WHERE product_id = ?`, id).Scan(&cur); err != nil {
		return 0, 0, notFound(err, "lecture stock")
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		next, err := apply(cur)
		if err != nil {
			return cur, cur, err
		}
		var observed int
		applied, err := s.q(ctx, `UPDATE %s.products SET stock_count = ?, updated_at = ? WHERE product_id = ? IF stock_count = ?`,
			next, time.Now().UTC(), id, cur).ScanCAS(&observed)
		if err != nil {
			return cur, cur, fmt.Errorf("mise à jour stock: %w", err)
		}
		if applied {
			return cur, next, nil
		}
		cur = observed
	}
	log.Printf("⚠️ Contention stock sur %s après %d essais", id, maxCASAttempts)
	return cur, cur, fmt.Errorf("stock %s: trop de conflits concurrents", id)
}

func (s *Scylla) DecrementStock(ctx context.Context, id string, qty int) (int, int, error) {
	return s.casStock(ctx, id, func(cur int) (int, error) {
		if cur < qty {
			return cur, store.ErrInsufficientStock
		}
		return cur - qty, nil
	})
}

func (s *Scylla) IncrementStock(ctx context.Context, id string, delta int) (int, int, error) {
	return s.casStock(ctx, id, func(cur int) (int, error) { return cur + delta, nil })
}

func (s *Scylla) SetStock(ctx context.Context, id string, value int) (int, int, error) {
	return s.casStock(ctx, id, func(int) (int, error) { return value, nil })
}

func (s *Scylla) RecordMovement(ctx context.Context, mv *models.StockMovement) error {
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now().UTC()
	}
	id := gocql.TimeUUID()
	mv.ID = id.String()
	err := s.q(ctx, `INSERT INTO %s.stock_movements (product_id, id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mv.ProductID, id, string(mv.Type), mv.Quantity, mv.PrevStock, mv.NewStock,
		mv.Reason, mv.OrderGroupID, mv.UserID, mv.CreatedAt,
	).Exec()
	if err != nil {
		return fmt.Errorf("insertion mouvement: %w", err)
	}
	return nil
}

func (s *Scylla) ListMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	iter := s.q(ctx, `SELECT product_id, id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at
		FROM %s.stock_movements WHERE product_id = ? LIMIT ?`, productID, limit).Iter()

	out := []models.StockMovement{}
	var (
		mv    models.StockMovement
		id    gocql.UUID
		mtype string
	)
	for iter.Scan(&mv.ProductID, &id, &mtype, &mv.Quantity, &mv.PrevStock, &mv.NewStock,
		&mv.Reason, &mv.OrderGroupID, &mv.UserID, &mv.CreatedAt) {
		mv.ID = id.String()
		mv.Type = models.MovementType(mtype)
		out = append(out, mv)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste mouvements: %w", err)
	}
	return out, nil
}
