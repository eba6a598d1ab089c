package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"furniture_back_end/internal/models"
)

// Memory est le magasin en mémoire : utilisé par défaut sans SCYLLA_HOSTS et
// par tous les tests. Une transaction prend le verrou d'écriture et marque le
// contexte pour que les méthodes appelées dedans ne reverrouillent pas.
type Memory struct {
	mu sync.RWMutex

	products     map[string]models.Product
	movements    []models.StockMovement
	cartLines    map[string]models.CartLine
	addresses    map[string]models.DeliveryAddress
	orders       map[string]models.Order
	cancels      []models.CancelRecord
	users        map[string]models.User
	admins       map[string]models.Admin
	orderCounter int
}

func NewMemory() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset vide tout le magasin (teardown des tests).
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[string]models.Product)
	m.movements = nil
	m.cartLines = make(map[string]models.CartLine)
	m.addresses = make(map[string]models.DeliveryAddress)
	m.orders = make(map[string]models.Order)
	m.cancels = nil
	m.users = make(map[string]models.User)
	m.admins = make(map[string]models.Admin)
	m.orderCounter = 0
}

// Store expose Memory derrière tous les ports.
func (m *Memory) Store() Store {
	return Store{
		Products:  m,
		Carts:     m,
		Addresses: m,
		Orders:    m,
		Directory: m,
		Tx:        m,
	}
}

var (
	_ ProductStore = (*Memory)(nil)
	_ CartStore    = (*Memory)(nil)
	_ AddressStore = (*Memory)(nil)
	_ OrderStore   = (*Memory)(nil)
	_ Directory    = (*Memory)(nil)
	_ TxManager    = (*Memory)(nil)
)

type txKey struct{}

func (m *Memory) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Memory)
	return owner == m
}

func (m *Memory) rlock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.RLock()
	return m.mu.RUnlock
}

func (m *Memory) wlock(ctx context.Context) func() {
	if m.inTx(ctx) {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if m.inTx(ctx) {
		return RunCompensated(ctx, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return RunCompensated(context.WithValue(ctx, txKey{}, m), fn)
}

// --- Produits ---

func (m *Memory) CreateProduct(ctx context.Context, p *models.Product) error {
	defer m.wlock(ctx)()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	defer m.rlock(ctx)()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]models.Product, error) {
	defer m.rlock(ctx)()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p *models.Product) error {
	defer m.wlock(ctx)()
	cur, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) adjust(ctx context.Context, id string, apply func(cur int) (int, error)) (int, int, error) {
	defer m.wlock(ctx)()
	p, ok := m.products[id]
	if !ok {
		return 0, 0, ErrNotFound
	}
	next, err := apply(p.StockCount)
	if err != nil {
		return p.StockCount, p.StockCount, err
	}
	prev := p.StockCount
	p.StockCount = next
	p.UpdatedAt = time.Now().UTC()
	m.products[id] = p
	return prev, next, nil
}

func (m *Memory) DecrementStock(ctx context.Context, id string, qty int) (int, int, error) {
	return m.adjust(ctx, id, func(cur int) (int, error) {
		if cur < qty {
			return cur, ErrInsufficientStock
		}
		return cur - qty, nil
	})
}

func (m *Memory) IncrementStock(ctx context.Context, id string, delta int) (int, int, error) {
	return m.adjust(ctx, id, func(cur int) (int, error) { return cur + delta, nil })
}

func (m *Memory) SetStock(ctx context.Context, id string, value int) (int, int, error) {
	return m.adjust(ctx, id, func(int) (int, error) { return value, nil })
}

func (m *Memory) RecordMovement(ctx context.Context, mv *models.StockMovement) error {
	defer m.wlock(ctx)()
	if mv.ID == "" {
		mv.ID = uuid.NewString()
	}
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now().UTC()
	}
	m.movements = append(m.movements, *mv)
	return nil
}

func (m *Memory) ListMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	defer m.rlock(ctx)()
	out := []models.StockMovement{}
	for i := len(m.movements) - 1; i >= 0; i-- {
		mv := m.movements[i]
		if productID != "" && mv.ProductID != productID {
			continue
		}
		out = append(out, mv)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- Panier ---

func (m *Memory) GetLine(ctx context.Context, userID, lineID string) (*models.CartLine, error) {
	defer m.rlock(ctx)()
	l, ok := m.cartLines[lineID]
	if !ok || l.UserID != userID {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (m *Memory) ListLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	defer m.rlock(ctx)()
	out := []models.CartLine{}
	for _, l := range m.cartLines {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sortLinesNewestFirst(out)
	return out, nil
}

func (m *Memory) SaveLine(ctx context.Context, l *models.CartLine) error {
	defer m.wlock(ctx)()
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	m.cartLines[l.ID] = *l
	return nil
}

func (m *Memory) MergeLine(ctx context.Context, l *models.CartLine) (*models.CartLine, bool, error) {
	defer m.wlock(ctx)()
	now := time.Now().UTC()
	for id, cur := range m.cartLines {
		if cur.UserID == l.UserID && cur.ProductID == l.ProductID {
			cur.Qty += l.Qty
			cur.UpdatedAt = now
			m.cartLines[id] = cur
			return &cur, false, nil
		}
	}
	line := *l
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	line.CreatedAt, line.UpdatedAt = now, now
	m.cartLines[line.ID] = line
	return &line, true, nil
}

func (m *Memory) DeleteLine(ctx context.Context, userID, lineID string) error {
	defer m.wlock(ctx)()
	l, ok := m.cartLines[lineID]
	if !ok || l.UserID != userID {
		return ErrNotFound
	}
	delete(m.cartLines, lineID)
	return nil
}

func (m *Memory) TakeLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	defer m.wlock(ctx)()
	out := []models.CartLine{}
	for id, l := range m.cartLines {
		if l.UserID == userID {
			out = append(out, l)
			delete(m.cartLines, id)
		}
	}
	sortLinesNewestFirst(out)
	return out, nil
}

func (m *Memory) ClearLines(ctx context.Context, userID string) error {
	defer m.wlock(ctx)()
	for id, l := range m.cartLines {
		if l.UserID == userID {
			delete(m.cartLines, id)
		}
	}
	return nil
}

func sortLinesNewestFirst(lines []models.CartLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return strings.Compare(lines[i].ID, lines[j].ID) > 0
		}
		return lines[i].CreatedAt.After(lines[j].CreatedAt)
	})
}

// --- Adresses ---

func (m *Memory) CreateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	defer m.wlock(ctx)()
	for _, cur := range m.addresses {
		if cur.UserID == a.UserID {
			return ErrAlreadyExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	m.addresses[a.ID] = *a
	return nil
}

func (m *Memory) GetAddress(ctx context.Context, id string) (*models.DeliveryAddress, error) {
	defer m.rlock(ctx)()
	a, ok := m.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) GetAddressByUser(ctx context.Context, userID string) (*models.DeliveryAddress, error) {
	defer m.rlock(ctx)()
	for _, a := range m.addresses {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	defer m.wlock(ctx)()
	cur, ok := m.addresses[a.ID]
	if !ok {
		return ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	m.addresses[a.ID] = *a
	return nil
}

func (m *Memory) DeleteAddressByUser(ctx context.Context, userID string) error {
	defer m.wlock(ctx)()
	for id, a := range m.addresses {
		if a.UserID == userID {
			delete(m.addresses, id)
			return nil
		}
	}
	return ErrNotFound
}

// --- Commandes ---

func (m *Memory) CreateOrder(ctx context.Context, o *models.Order) error {
	defer m.wlock(ctx)()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	// même horodatage possible dans un checkout : le compteur garde l'ordre d'insertion
	m.orderCounter++
	now := time.Now().UTC().Add(time.Duration(m.orderCounter) * time.Nanosecond)
	o.CreatedAt, o.UpdatedAt = now, now
	m.orders[o.ID] = *o
	return nil
}

func (m *Memory) DeleteOrder(ctx context.Context, id string) error {
	defer m.wlock(ctx)()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	defer m.rlock(ctx)()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *Memory) filterOrders(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *Memory) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	defer m.rlock(ctx)()
	return m.filterOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

// ListOrdersByGroup renvoie les lignes dans l'ordre de création.
func (m *Memory) ListOrdersByGroup(ctx context.Context, groupID string) ([]models.Order, error) {
	defer m.rlock(ctx)()
	out := m.filterOrders(func(o models.Order) bool { return o.OrderGroupID == groupID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	defer m.rlock(ctx)()
	return m.filterOrders(func(models.Order) bool { return true }), nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	defer m.wlock(ctx)()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o
	return &o, nil
}

func (m *Memory) SaveCancellation(ctx context.Context, r *models.CancelRecord) error {
	defer m.wlock(ctx)()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.cancels = append(m.cancels, *r)
	return nil
}

func (m *Memory) ListCancellations(ctx context.Context, orderID string) ([]models.CancelRecord, error) {
	defer m.rlock(ctx)()
	out := []models.CancelRecord{}
	for _, r := range m.cancels {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Principaux ---

func (m *Memory) FindUser(ctx context.Context, id string) (*models.User, error) {
	defer m.rlock(ctx)()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) FindAdmin(ctx context.Context, id string) (*models.Admin, error) {
	defer m.rlock(ctx)()
	a, ok := m.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	defer m.rlock(ctx)()
	for _, a := range m.admins {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	defer m.wlock(ctx)()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) CreateAdmin(ctx context.Context, a *models.Admin) error {
	defer m.wlock(ctx)()
	for _, cur := range m.admins {
		if strings.EqualFold(cur.Email, a.Email) {
			return ErrAlreadyExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Role == "" {
		a.Role = models.AdminRoleAdmin
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.admins[a.ID] = *a
	return nil
}
