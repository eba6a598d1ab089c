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

// Panier ScyllaDB, utilisé quand REDIS_HOST n'est pas configuré.

const cartColumns = `user_id, line_id, product_id, product_name, price, qty, created_at, updated_at`

func cartDest(l *models.CartLine) []interface{} {
	return []interface{}{&l.UserID, &l.ID, &l.ProductID, &l.ProductName, &l.Price, &l.Qty, &l.CreatedAt, &l.UpdatedAt}
}

func (s *Scylla) ListLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	iter := s.q(ctx, `SELECT `+cartColumns+` FROM %s.cart_lines WHERE user_id = ?`, userID).Iter()
	out := []models.CartLine{}
	var l models.CartLine
	for iter.Scan(cartDest(&l)...) {
		out = append(out, l)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// cartLineID est dérivé de (user, product) : la clé primaire porte elle-même
// l'unicité d'une ligne par produit.
func cartLineID(userID, productID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(userID+"/"+productID)).String()
}

// MergeLine : INSERT ... IF NOT EXISTS, puis boucle CAS sur qty si la ligne existe.
func (s *Scylla) MergeLine(ctx context.Context, l *models.CartLine) (*models.CartLine, bool, error) {
	now := time.Now().UTC()
	line := *l
	line.ID = cartLineID(l.UserID, l.ProductID)
	line.CreatedAt, line.UpdatedAt = now, now

	applied, err := s.q(ctx, `INSERT INTO %s.cart_lines (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		line.UserID, line.ID, line.ProductID, line.ProductName, line.Price, line.Qty, line.CreatedAt, line.UpdatedAt,
	).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, false, fmt.Errorf("insertion ligne: %w", err)
	}
	if applied {
		return &line, true, nil
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		cur, err := s.GetLine(ctx, l.UserID, line.ID)
		if err != nil {
			return nil, false, err
		}
		var seen int
		applied, err := s.q(ctx, `UPDATE %s.cart_lines SET qty = ?, updated_at = ? WHERE user_id = ? AND line_id = ? IF qty = ?`,
			cur.Qty+l.Qty, now, l.UserID, line.ID, cur.Qty).ScanCAS(&seen)
		if err != nil {
			return nil, false, fmt.Errorf("fusion ligne: %w", err)
		}
		if applied {
			cur.Qty += l.Qty
			cur.UpdatedAt = now
			return cur, false, nil
		}
	}
	return nil, false, fmt.Errorf("fusion ligne %s: trop de conflits", line.ID)
}

func (s *Scylla) GetLine(ctx context.Context, userID, lineID string) (*models.CartLine, error) {
	var l models.CartLine
	err := s.q(ctx, `SELECT `+cartColumns+` FROM %s.cart_lines WHERE user_id = ? AND line_id = ?`, userID, lineID).
		Scan(cartDest(&l)...)
	if err != nil {
		return nil, notFound(err, "lecture ligne")
	}
	return &l, nil
}

func (s *Scylla) SaveLine(ctx context.Context, l *models.CartLine) error {
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	err := s.q(ctx, `INSERT INTO %s.cart_lines (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.UserID, l.ID, l.ProductID, l.ProductName, l.Price, l.Qty, l.CreatedAt, l.UpdatedAt,
	).Exec()
	if err != nil {
		return fmt.Errorf("sauvegarde ligne: %w", err)
	}
	return nil
}

func (s *Scylla) DeleteLine(ctx context.Context, userID, lineID string) error {
	applied, err := s.q(ctx, `DELETE FROM %s.cart_lines WHERE user_id = ? AND line_id = ? IF EXISTS`, userID, lineID).
		ScanCAS()
	if err != nil {
		return fmt.Errorf("suppression ligne: %w", err)
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Scylla) ClearLines(ctx context.Context, userID string) error {
	if err := s.q(ctx, `DELETE FROM %s.cart_lines WHERE user_id = ?`, userID).Exec(); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

// cartClaimTTL libère un verrou de checkout abandonné par un process tué.
const cartClaimTTL = 30

// TakeLines prend un verrou LWT par utilisateur, puis retire chaque ligne par
// DELETE ... IF qty = ? : une ligne modifiée entre-temps reste au panier.
func (s *Scylla) TakeLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	claim := gocql.TimeUUID()
	applied, err := s.q(ctx, `INSERT INTO %s.cart_claims (user_id, claim_id) VALUES (?, ?) IF NOT EXISTS USING TTL `+fmt.Sprint(cartClaimTTL),
		userID, claim).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("verrou panier: %w", err)
	}
	if !applied {
		return nil, store.ErrConflict
	}
	defer func() {
		err := s.q(context.WithoutCancel(ctx), `DELETE FROM %s.cart_claims WHERE user_id = ? IF claim_id = ?`, userID, claim).Exec()
		if err != nil {
			log.Printf("⚠️ Verrou panier %s non libéré (expire sous %ds): %v", userID, cartClaimTTL, err)
		}
	}()

	lines, err := s.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	taken := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		var seen int
		applied, err := s.q(ctx, `DELETE FROM %s.cart_lines WHERE user_id = ? AND line_id = ? IF qty = ?`,
			userID, l.ID, l.Qty).ScanCAS(&seen)
		if err != nil {
			s.restoreLines(ctx, taken)
			return nil, fmt.Errorf("retrait ligne %s: %w", l.ID, err)
		}
		if applied {
			taken = append(taken, l)
		}
	}
	return taken, nil
}

// restoreLines remet les lignes déjà retirées quand TakeLines échoue en route.
func (s *Scylla) restoreLines(ctx context.Context, lines []models.CartLine) {
	ctx = context.WithoutCancel(ctx)
	for i := range lines {
		if err := s.SaveLine(ctx, &lines[i]); err != nil {
			log.Printf("❌ Ligne %s non remise au panier de %s: %v", lines[i].ID, lines[i].UserID, err)
		}
	}
}
