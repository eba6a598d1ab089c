package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	StatusConfirmed  OrderStatus = "confirmed"
	StatusDispatched OrderStatus = "dispatched"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentMode string

const (
	ModeCOD    PaymentMode = "cod"
	ModeOnline PaymentMode = "online"
)

// Order : une ligne par ligne de panier. Toutes les lignes d'un même checkout
// partagent OrderGroupID et Total.
type Order struct {
	ID           string      `json:"_id"`
	OrderGroupID string      `json:"order_id"`
	ProductID    string      `json:"product"`
	UserID       string      `json:"user"`
	AddressID    string      `json:"address"`
	Qty          int         `json:"qty"`
	Total        float64     `json:"total"`
	Mode         PaymentMode `json:"mode"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// OrderView joint le produit et l'adresse à une commande pour l'affichage.
type OrderView struct {
	Order
	Product *ProductSummary  `json:"product"`
	Address *DeliveryAddress `json:"address"`
}

type orderJSON Order

// MarshalJSON garde l'id brut quand le produit ou l'adresse a disparu.
func (v OrderView) MarshalJSON() ([]byte, error) {
	out := struct {
		orderJSON
		Product any `json:"product"`
		Address any `json:"address"`
	}{orderJSON: orderJSON(v.Order), Product: v.ProductID, Address: v.AddressID}
	if v.Product != nil {
		out.Product = v.Product
	}
	if v.Address != nil {
		out.Address = v.Address
	}
	return json.Marshal(out)
}

// CancelRecord conserve le motif d'une annulation self-service.
type CancelRecord struct {
	ID        string    `json:"_id"`
	OrderID   string    `json:"order"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusConfirmed, StatusDispatched, StatusDelivered, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

func ParsePaymentMode(s string) (PaymentMode, bool) {
	switch PaymentMode(s) {
	case "":
		return ModeCOD, true
	case ModeCOD, ModeOnline:
		return PaymentMode(s), true
	}
	return "", false
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusConfirmed:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered, StatusCancelled},
}

// IsTerminal : delivered et cancelled n'ont plus de transition sortante.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition applique la table d'adjacence confirmed → dispatched → delivered,
// confirmed/dispatched → cancelled.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
