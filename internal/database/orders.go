package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const orderColumns = `order_id, order_group_id, product_id, user_id, address_id, qty, total, mode, status, created_at, updated_at`

type orderRow struct {
	models.Order
	mode, status string
}

func (r *orderRow) dest() []interface{} {
	return []interface{}{&r.ID, &r.OrderGroupID, &r.ProductID, &r.UserID, &r.AddressID,
		&r.Qty, &r.Total, &r.mode, &r.status, &r.CreatedAt, &r.UpdatedAt}
}

func (r *orderRow) order() models.Order {
	o := r.Order
	o.Mode = models.PaymentMode(r.mode)
	o.Status = models.OrderStatus(r.status)
	return o
}

// CreateOrder écrit la ligne et ses deux index dans un batch logué.
func (s *Scylla) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := s.stamp()
	o.CreatedAt, o.UpdatedAt = now, now

	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(fmt.Sprintf(`INSERT INTO %s.orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.ks),
		o.ID, o.OrderGroupID, o.ProductID, o.UserID, o.AddressID, o.Qty, o.Total,
		string(o.Mode), string(o.Status), o.CreatedAt, o.UpdatedAt)
	b.Query(fmt.Sprintf(`INSERT INTO %s.orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`, s.ks),
		o.UserID, o.CreatedAt, o.ID)
	b.Query(fmt.Sprintf(`INSERT INTO %s.orders_by_group (order_group_id, created_at, order_id) VALUES (?, ?, ?)`, s.ks),
		o.OrderGroupID, o.CreatedAt, o.ID)
	if err := s.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	return nil
}

// DeleteOrder ne sert qu'à compenser un checkout avorté.
func (s *Scylla) DeleteOrder(ctx context.Context, id string) error {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(fmt.Sprintf(`DELETE FROM %s.orders WHERE order_id = ?`, s.ks), o.ID)
	b.Query(fmt.Sprintf(`DELETE FROM %s.orders_by_user WHERE user_id = ? AND created_at = ? AND order_id = ?`, s.ks),
		o.UserID, o.CreatedAt, o.ID)
	b.Query(fmt.Sprintf(`DELETE FROM %s.orders_by_group WHERE order_group_id = ? AND created_at = ? AND order_id = ?`, s.ks),
		o.OrderGroupID, o.CreatedAt, o.ID)
	if err := s.session.ExecuteBatch(b); err != nil {
		return fmt.Errorf("suppression commande: %w", err)
	}
	return nil
}

func (s *Scylla) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var r orderRow
	if err := s.q(ctx, `SELECT `+orderColumns+` FROM %s.orders WHERE order_id = ?`, id).Scan(r.dest()...); err != nil {
		return nil, notFound(err, "lecture commande")
	}
	o := r.order()
	return &o, nil
}

// ordersByIndex lit les ids d'une table d'index puis les lignes de base,
// dans l'ordre de l'index.
func (s *Scylla) ordersByIndex(ctx context.Context, stmt string, key string) ([]models.Order, error) {
	iter := s.q(ctx, stmt, key).Iter()
	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture index commandes: %w", err)
	}

	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetOrder(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *Scylla) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.ordersByIndex(ctx, `SELECT order_id FROM %s.orders_by_user WHERE user_id = ?`, userID)
}

func (s *Scylla) ListOrdersByGroup(ctx context.Context, groupID string) ([]models.Order, error) {
	return s.ordersByIndex(ctx, `SELECT order_id FROM %s.orders_by_group WHERE order_group_id = ?`, groupID)
}

func (s *Scylla) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	iter := s.q(ctx, `SELECT `+orderColumns+` FROM %s.orders`).Iter()
	out := []models.Order{}
	var r orderRow
	for iter.Scan(r.dest()...) {
		out = append(out, r.order())
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("liste commandes: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateOrderStatus : IF EXISTS évite de créer une ligne fantôme par upsert.
func (s *Scylla) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	applied, err := s.q(ctx, `UPDATE %s.orders SET status = ?, updated_at = ? WHERE order_id = ? IF EXISTS`,
		string(status), time.Now().UTC(), id).ScanCAS()
	if err != nil {
		return nil, fmt.Errorf("mise à jour statut: %w", err)
	}
	if !applied {
		return nil, store.ErrNotFound
	}
	return s.GetOrder(ctx, id)
}

func (s *Scylla) SaveCancellation(ctx context.Context, r *models.CancelRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	id := gocql.TimeUUID()
	r.ID = id.String()
	err := s.q(ctx, `INSERT INTO %s.order_cancellations (order_id, id, reason, created_at) VALUES (?, ?, ?, ?)`,
		r.OrderID, id, r.Reason, r.CreatedAt).Exec()
	if err != nil {
		return fmt.Errorf("insertion annulation: %w", err)
	}
	return nil
}

func (s *Scylla) ListCancellations(ctx context.Context, orderID string) ([]models.CancelRecord, error) {
	iter := s.q(ctx, `SELECT id, reason, created_at FROM %s.order_cancellations WHERE order_id = ?`, orderID).Iter()
	out := []models.CancelRecord{}
	var (
		id      gocql.UUID
		reason  string
		created time.Time
	)
	for iter.Scan(&id, &reason, &created) {
		out = append(out, models.CancelRecord{ID: id.String(), OrderID: orderID, Reason: reason, CreatedAt: created})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture annulations: %w", err)
	}
	return out, nil
}
