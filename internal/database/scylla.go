package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"furniture_back_end/internal/store"
)

// Scylla implémente tous les ports de store. Pas de transaction
// multi-partition : WithTransaction s'appuie sur le journal de compensation,
// et le stock n'est modifié que par LWT.
type Scylla struct {
	session *gocql.Session
	ks      string

	mu   sync.Mutex
	last time.Time
}

var (
	_ store.ProductStore = (*Scylla)(nil)
	_ store.CartStore    = (*Scylla)(nil)
	_ store.AddressStore = (*Scylla)(nil)
	_ store.OrderStore   = (*Scylla)(nil)
	_ store.Directory    = (*Scylla)(nil)
	_ store.TxManager    = (*Scylla)(nil)
)

func (s *Scylla) Store() store.Store {
	return store.Store{
		Products:  s,
		Carts:     s,
		Addresses: s,
		Orders:    s,
		Directory: s,
		Tx:        s,
	}
}

func (s *Scylla) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return store.RunCompensated(ctx, fn)
}

// q qualifie la table et attache le contexte.
func (s *Scylla) q(ctx context.Context, stmt string, args ...interface{}) *gocql.Query {
	return s.session.Query(fmt.Sprintf(stmt, s.ks), args...).WithContext(ctx)
}

// notFound convertit gocql.ErrNotFound en store.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

// stamp renvoie un horodatage strictement croissant à la milliseconde près,
// pour que les index de commandes conservent l'ordre de création.
func (s *Scylla) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(s.last) {
		now = s.last.Add(time.Millisecond)
	}
	s.last = now
	return now
}
