package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

// CancelRestockUnits : une annulation self-service rend exactement 1 unité au
// stock, quelle que soit la quantité commandée.
// TODO: restaurer Order.Qty une fois l'écart décrément/restauration tranché.
const CancelRestockUnits = 1

// Actor distingue les deux chemins d'un changement de statut.
type Actor int

const (
	// ActorCustomer : annulation self-service, préconditions et restock.
	ActorCustomer Actor = iota
	// ActorPrivileged : mise à jour générique, sans préconditions ni restock.
	ActorPrivileged
)

type transitionPolicy struct {
	requireOwner     bool
	guardTerminal    bool
	enforceAdjacency bool
	restockUnits     int
	recordReason     bool
}

type StatusChange struct {
	Actor  Actor
	UserID string
	Ref    string // id de ligne ou order_group_id
	Target models.OrderStatus
	Reason string
}

// OrderService lit les commandes et porte la machine d'états.
type OrderService struct {
	orders    store.OrderStore
	products  store.ProductStore
	addresses store.AddressStore
	tx        store.TxManager
	notifier  Notifier
	strict    bool
}

// NewOrderService : strict active la table d'adjacence sur le chemin privilégié.
func NewOrderService(s store.Store, n Notifier, strict bool) *OrderService {
	if n == nil {
		n = NopNotifier{}
	}
	return &OrderService{
		orders:    s.Orders,
		products:  s.Products,
		addresses: s.Addresses,
		tx:        s.Tx,
		notifier:  n,
		strict:    strict,
	}
}

func (s *OrderService) policyFor(a Actor) transitionPolicy {
	if a == ActorCustomer {
		return transitionPolicy{
			requireOwner:  true,
			guardTerminal: true,
			restockUnits:  CancelRestockUnits,
			recordReason:  true,
		}
	}
	return transitionPolicy{enforceAdjacency: s.strict}
}

// Cancel est l'annulation self-service.
func (s *OrderService) Cancel(ctx context.Context, userID, ref, reason string) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "reason", Message: "Cancellation reason is required"})
	}
	return s.ChangeStatus(ctx, StatusChange{
		Actor:  ActorCustomer,
		UserID: userID,
		Ref:    ref,
		Target: models.StatusCancelled,
		Reason: reason,
	})
}

// UpdateStatus est la mise à jour privilégiée : n'importe lequel des quatre
// statuts, sans contrôle d'adjacence sauf en mode strict.
func (s *OrderService) UpdateStatus(ctx context.Context, ref, status string) (*models.Order, error) {
	target, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "status", Message: "Invalid status"})
	}
	return s.ChangeStatus(ctx, StatusChange{Actor: ActorPrivileged, Ref: ref, Target: target})
}

// ChangeStatus applique un changement de statut selon la politique de l'acteur.
func (s *OrderService) ChangeStatus(ctx context.Context, ch StatusChange) (*models.Order, error) {
	policy := s.policyFor(ch.Actor)

	var updated *models.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		owner := ""
		if policy.requireOwner {
			owner = ch.UserID
		}
		order, err := s.resolve(ctx, ch.Ref, owner)
		if err != nil {
			return err
		}

		if policy.guardTerminal {
			switch order.Status {
			case models.StatusCancelled:
				return apperr.Validation("Order is already cancelled")
			case models.StatusDelivered:
				return apperr.Validation("Cannot cancel delivered order")
			}
		}
		if policy.enforceAdjacency && order.Status != ch.Target && !models.CanTransition(order.Status, ch.Target) {
			return apperr.Validation("Invalid status transition from " + string(order.Status) + " to " + string(ch.Target))
		}

		prevStatus := order.Status
		updated, err = s.orders.UpdateOrderStatus(ctx, order.ID, ch.Target)
		if err != nil {
			return storeErr(err, "Order not found", "Something went wrong while updating order")
		}
		orderID := order.ID
		tx.OnRollback("revert status "+orderID, func(ctx context.Context) error {
			_, err := s.orders.UpdateOrderStatus(ctx, orderID, prevStatus)
			return err
		})

		if ch.Target == models.StatusCancelled && policy.restockUnits > 0 {
			prev, next, err := s.products.IncrementStock(ctx, order.ProductID, policy.restockUnits)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return apperr.Internal("Something went wrong while cancelling order", err)
			}
			if err == nil {
				if err := s.products.RecordMovement(ctx, &models.StockMovement{
					ProductID:    order.ProductID,
					Type:         models.MovementCancelRestore,
					Quantity:     policy.restockUnits,
					PrevStock:    prev,
					NewStock:     next,
					Reason:       ch.Reason,
					OrderGroupID: order.OrderGroupID,
					UserID:       ch.UserID,
				}); err != nil {
					log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
				}
			}
		}

		if policy.recordReason {
			if err := s.orders.SaveCancellation(ctx, &models.CancelRecord{OrderID: order.ID, Reason: ch.Reason}); err != nil {
				log.Printf("⚠️ Erreur enregistrement motif d'annulation: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Commande %s (%s) → %s", updated.ID, updated.OrderGroupID, updated.Status)
	snapshot := *updated
	notifyAsync(ctx, func(ctx context.Context) { s.notifier.StatusChanged(ctx, snapshot) })
	return updated, nil
}

// resolve cherche d'abord une ligne par id, puis la première ligne du groupe.
// owner non vide restreint aux commandes de cet utilisateur.
func (s *OrderService) resolve(ctx context.Context, ref, owner string) (*models.Order, error) {
	o, err := s.orders.GetOrder(ctx, ref)
	switch {
	case err == nil:
		if owner != "" && o.UserID != owner {
			return nil, apperr.NotFound("Order not found")
		}
		return o, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal("Something went wrong while fetching order", err)
	}

	rows, err := s.orders.ListOrdersByGroup(ctx, ref)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching order", err)
	}
	for i := range rows {
		if owner == "" || rows[i].UserID == owner {
			return &rows[i], nil
		}
	}
	return nil, apperr.NotFound("Order not found")
}

func (s *OrderService) ListMine(ctx context.Context, userID string) ([]models.OrderView, error) {
	rows, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching orders", err)
	}
	return s.views(ctx, rows)
}

// GetGroup renvoie les lignes du groupe appartenant à l'utilisateur.
func (s *OrderService) GetGroup(ctx context.Context, userID, groupID string) ([]models.OrderView, error) {
	rows, err := s.orders.ListOrdersByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching order details", err)
	}
	mine := rows[:0]
	for _, o := range rows {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	if len(mine) == 0 {
		return nil, apperr.NotFound("Order not found")
	}
	return s.views(ctx, mine)
}

// Cancellations relit les motifs d'annulation d'une ligne (ou de la première
// ligne du groupe), pour l'admin.
func (s *OrderService) Cancellations(ctx context.Context, ref string) ([]models.CancelRecord, error) {
	o, err := s.resolve(ctx, ref, "")
	if err != nil {
		return nil, err
	}
	out, err := s.orders.ListCancellations(ctx, o.ID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching cancellations", err)
	}
	return out, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.OrderView, error) {
	rows, err := s.orders.ListAllOrders(ctx)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while fetching orders", err)
	}
	return s.views(ctx, rows)
}

// views joint produit et adresse, avec un cache local par appel.
func (s *OrderService) views(ctx context.Context, rows []models.Order) ([]models.OrderView, error) {
	products := map[string]*models.ProductSummary{}
	addresses := map[string]*models.DeliveryAddress{}
	out := make([]models.OrderView, 0, len(rows))

	for _, o := range rows {
		v := models.OrderView{Order: o}

		if sum, ok := products[o.ProductID]; ok {
			v.Product = sum
		} else {
			p, err := s.products.GetProduct(ctx, o.ProductID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Internal("Something went wrong while fetching orders", err)
			}
			if p != nil {
				sum := p.Summary()
				v.Product = &sum
			}
			products[o.ProductID] = v.Product
		}

		if a, ok := addresses[o.AddressID]; ok {
			v.Address = a
		} else {
			a, err := s.addresses.GetAddress(ctx, o.AddressID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Internal("Something went wrong while fetching orders", err)
			}
			v.Address = a
			addresses[o.AddressID] = a
		}
		out = append(out, v)
	}
	return out, nil
}
