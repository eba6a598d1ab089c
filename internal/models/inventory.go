package models

import "time"

type MovementType string

const (
	MovementSale          MovementType = "sale"
	MovementCancelRestore MovementType = "cancel_restore"
	MovementRestock       MovementType = "restock"
	MovementAdjustment    MovementType = "adjustment"
)

type StockMovement struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"product_id"`
	Type         MovementType `json:"type"`
	Quantity     int          `json:"quantity"`
	PrevStock    int          `json:"prev_stock"`
	NewStock     int          `json:"new_stock"`
	Reason       string       `json:"reason"`
	OrderGroupID string       `json:"order_id,omitempty"`
	UserID       string       `json:"user_id"`
	CreatedAt    time.Time    `json:"created_at"`
}
