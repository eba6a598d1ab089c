// Package store définit les ports de persistance du cœur commandes/stock.
// Deux implémentations : Memory (ce paquet) et ScyllaDB (internal/database),
// le panier pouvant vivre dans Redis (internal/cache).
package store

import (
	"context"
	"errors"

	"furniture_back_end/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict : une autre opération tient déjà la ressource (checkout en cours).
	ErrConflict = errors.New("conflict")
)

// ProductStore porte le ledger de stock : stock_count est le seul compteur
// mutable partagé entre checkout et annulation.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error

	// DecrementStock retire qty seulement si stock_count >= qty,
	// sinon ErrInsufficientStock et rien ne change.
	DecrementStock(ctx context.Context, id string, qty int) (prev, next int, err error)
	// IncrementStock ajoute delta sans aucune garde.
	IncrementStock(ctx context.Context, id string, delta int) (prev, next int, err error)
	SetStock(ctx context.Context, id string, value int) (prev, next int, err error)

	RecordMovement(ctx context.Context, m *models.StockMovement) error
	ListMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error)
}

type CartStore interface {
	GetLine(ctx context.Context, userID, lineID string) (*models.CartLine, error)
	ListLines(ctx context.Context, userID string) ([]models.CartLine, error)
	// SaveLine insère ou remplace ; un ID vide est généré.
	SaveLine(ctx context.Context, l *models.CartLine) error
	// MergeLine ajoute l.Qty à la ligne (user, product) existante ou insère l,
	// en une seule opération : deux ajouts concurrents ne créent jamais deux lignes.
	// Sur une fusion l'instantané nom/prix d'origine est conservé.
	MergeLine(ctx context.Context, l *models.CartLine) (line *models.CartLine, created bool, err error)
	DeleteLine(ctx context.Context, userID, lineID string) error
	// TakeLines retire et renvoie toutes les lignes d'un coup : un panier n'est
	// consommé que par un seul checkout. ErrConflict si un autre le tient.
	TakeLines(ctx context.Context, userID string) ([]models.CartLine, error)
	ClearLines(ctx context.Context, userID string) error
}

type AddressStore interface {
	// CreateAddress renvoie ErrAlreadyExists si l'utilisateur en possède déjà une.
	CreateAddress(ctx context.Context, a *models.DeliveryAddress) error
	GetAddress(ctx context.Context, id string) (*models.DeliveryAddress, error)
	GetAddressByUser(ctx context.Context, userID string) (*models.DeliveryAddress, error)
	UpdateAddress(ctx context.Context, a *models.DeliveryAddress) error
	DeleteAddressByUser(ctx context.Context, userID string) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	// DeleteOrder ne sert qu'aux compensations d'un checkout avorté.
	DeleteOrder(ctx context.Context, id string) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrdersByGroup(ctx context.Context, groupID string) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	SaveCancellation(ctx context.Context, r *models.CancelRecord) error
	ListCancellations(ctx context.Context, orderID string) ([]models.CancelRecord, error)
}

// Directory résout les principaux (utilisateurs et administrateurs).
type Directory interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateUser(ctx context.Context, u *models.User) error
	CreateAdmin(ctx context.Context, a *models.Admin) error
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// Tx reçoit les actions compensatoires d'une unité de travail.
type Tx interface {
	OnRollback(step string, undo func(ctx context.Context) error)
}

// TxManager exécute fn comme une seule unité : si fn échoue, les
// compensations enregistrées sont rejouées en ordre inverse.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Store regroupe tous les ports, c'est ce que câblent cmd/server et les tests.
type Store struct {
	Products  ProductStore
	Carts     CartStore
	Addresses AddressStore
	Orders    OrderStore
	Directory Directory
	Tx        TxManager
}
