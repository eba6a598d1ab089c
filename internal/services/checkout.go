package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const MsgOrderPlaced = "Order placed successfully. You will receive order within 7 days from today."

// NewOrderGroupID : ORD-<unix ms>-<8 hex majuscules>. Seule l'unicité compte.
func NewOrderGroupID() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
}

type CheckoutInput struct {
	UserID    string
	AddressID string
	Total     float64 // total client, stocké tel quel sur chaque ligne
	Mode      models.PaymentMode
}

type CheckoutResult struct {
	GroupID string
	Orders  []models.Order
}

// CheckoutService transforme un panier en groupe de commandes.
type CheckoutService struct {
	products  store.ProductStore
	carts     store.CartStore
	addresses store.AddressStore
	orders    store.OrderStore
	tx        store.TxManager
	notifier  Notifier
	newID     func() string
}

func NewCheckoutService(s store.Store, n Notifier) *CheckoutService {
	if n == nil {
		n = NopNotifier{}
	}
	return &CheckoutService{
		products:  s.Products,
		carts:     s.Carts,
		addresses: s.Addresses,
		orders:    s.Orders,
		tx:        s.Tx,
		notifier:  n,
		newID:     NewOrderGroupID,
	}
}

// Checkout retire le panier, crée une commande par ligne sous un même
// order_group_id et décrémente le stock de chaque ligne. Le tout forme une
// seule unité : au premier échec le panier est remis et rien de ce checkout
// ne reste visible.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	mode, ok := models.ParsePaymentMode(string(in.Mode))
	if !ok {
		return nil, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "mode", Message: "Mode must be cod or online"})
	}

	groupID := s.newID()
	var (
		created   []models.Order
		movements []models.StockMovement
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		created, movements = created[:0], movements[:0]

		addr, err := s.addresses.GetAddress(ctx, in.AddressID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal("Something went wrong while creating order", err)
		}
		if addr == nil || addr.UserID != in.UserID {
			return apperr.NotFound("Address not found")
		}

		// le panier est retiré d'un bloc avant toute écriture : un second
		// checkout concurrent du même utilisateur le trouve vide
		lines, err := s.carts.TakeLines(ctx, in.UserID)
		switch {
		case errors.Is(err, store.ErrConflict):
			return apperr.Validation("Checkout already in progress")
		case err != nil:
			return apperr.Internal("Something went wrong while creating order", err)
		}
		if len(lines) == 0 {
			return apperr.Validation("Cart is empty")
		}
		tx.OnRollback("restore cart "+in.UserID, func(ctx context.Context) error {
			for i := range lines {
				if err := s.carts.SaveLine(ctx, &lines[i]); err != nil {
					return err
				}
			}
			return nil
		})

		// le total du client fait foi ; un écart est seulement journalisé
		if sub := models.CartSubtotal(lines); math.Abs(sub-in.Total) > 0.005 {
			log.Printf("⚠️ Total client %.2f différent du sous-total panier %.2f (user %s)", in.Total, sub, in.UserID)
		}

		for _, line := range lines {
			o := models.Order{
				OrderGroupID: groupID,
				ProductID:    line.ProductID,
				UserID:       in.UserID,
				AddressID:    addr.ID,
				Qty:          line.Qty,
				Total:        in.Total,
				Mode:         mode,
				Status:       models.StatusConfirmed,
			}
			if err := s.orders.CreateOrder(ctx, &o); err != nil {
				return apperr.Internal("Something went wrong while creating order", err)
			}
			orderID := o.ID
			tx.OnRollback("delete order "+orderID, func(ctx context.Context) error {
				return s.orders.DeleteOrder(ctx, orderID)
			})

			prev, next, err := s.products.DecrementStock(ctx, line.ProductID, line.Qty)
			switch {
			case errors.Is(err, store.ErrInsufficientStock):
				return apperr.OutOfStock(fmt.Sprintf("Only %d items of %s available in stock", prev, line.ProductName))
			case errors.Is(err, store.ErrNotFound):
				return apperr.NotFound("Product not found")
			case err != nil:
				return apperr.Internal("Something went wrong while creating order", err)
			}
			productID, qty := line.ProductID, line.Qty
			tx.OnRollback("restore stock "+productID, func(ctx context.Context) error {
				_, _, err := s.products.IncrementStock(ctx, productID, qty)
				return err
			})

			movements = append(movements, models.StockMovement{
				ProductID:    productID,
				Type:         models.MovementSale,
				Quantity:     qty,
				PrevStock:    prev,
				NewStock:     next,
				Reason:       "checkout",
				OrderGroupID: groupID,
				UserID:       in.UserID,
			})
			created = append(created, o)
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Checkout %s abandonné pour %s: %v", groupID, in.UserID, err)
		return nil, err
	}

	// le journal des mouvements n'est écrit qu'une fois l'unité validée
	for i := range movements {
		if err := s.products.RecordMovement(ctx, &movements[i]); err != nil {
			log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
		}
	}

	log.Printf("✅ Commande %s créée: %d ligne(s) pour %s", groupID, len(created), in.UserID)
	orders := append([]models.Order(nil), created...)
	notifyAsync(ctx, func(ctx context.Context) {
		s.notifier.OrderPlaced(ctx, in.UserID, groupID, orders)
	})
	return &CheckoutResult{GroupID: groupID, Orders: orders}, nil
}
