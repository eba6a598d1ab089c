package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const addressColumns = `address_id, user_id, mob1, mob2, postalcode, address, area, landmark, city, state, created_at, updated_at`

func addressDest(a *models.DeliveryAddress) []interface{} {
	return []interface{}{&a.ID, &a.UserID, &a.Mob1, &a.Mob2, &a.PostalCode, &a.Address,
		&a.Area, &a.Landmark, &a.City, &a.State, &a.CreatedAt, &a.UpdatedAt}
}

// CreateAddress réserve d'abord addresses_by_user par LWT : une seule
// adresse par utilisateur même sous requêtes concurrentes.
func (s *Scylla) CreateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	var existing, existingID string
	applied, err := s.q(ctx, `INSERT INTO %s.addresses_by_user (user_id, address_id) VALUES (?, ?) IF NOT EXISTS`,
		a.UserID, a.ID).ScanCAS(&existing, &existingID)
	if err != nil {
		return fmt.Errorf("réservation adresse: %w", err)
	}
	if !applied {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if err := s.writeAddress(ctx, a); err != nil {
		// libérer la réservation pour permettre un nouvel essai
		if relErr := s.releaseAddressClaim(ctx, a.UserID, a.ID); relErr != nil {
			log.Printf("❌ Réservation adresse de %s non libérée: %v", a.UserID, relErr)
		}
		return err
	}
	return nil
}

// releaseAddressClaim survit à l'annulation de la requête.
func (s *Scylla) releaseAddressClaim(ctx context.Context, userID, addressID string) error {
	return s.q(context.WithoutCancel(ctx), `DELETE FROM %s.addresses_by_user WHERE user_id = ? IF address_id = ?`,
		userID, addressID).Exec()
}

func (s *Scylla) writeAddress(ctx context.Context, a *models.DeliveryAddress) error {
	err := s.q(ctx, `INSERT INTO %s.addresses (`+addressColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Mob1, a.Mob2, a.PostalCode, a.Address,
		a.Area, a.Landmark, a.City, a.State, a.CreatedAt, a.UpdatedAt,
	).Exec()
	if err != nil {
		return fmt.Errorf("écriture adresse: %w", err)
	}
	return nil
}

func (s *Scylla) GetAddress(ctx context.Context, id string) (*models.DeliveryAddress, error) {
	var a models.DeliveryAddress
	if err := s.q(ctx, `SELECT `+addressColumns+` FROM %s.addresses WHERE address_id = ?`, id).Scan(addressDest(&a)...); err != nil {
		return nil, notFound(err, "lecture adresse")
	}
	return &a, nil
}

func (s *Scylla) GetAddressByUser(ctx context.Context, userID string) (*models.DeliveryAddress, error) {
	var id string
	if err := s.q(ctx, `SELECT address_id FROM %s.addresses_by_user WHERE user_id = ?`, userID).Scan(&id); err != nil {
		return nil, notFound(err, "lecture adresse")
	}
	return s.GetAddress(ctx, id)
}

func (s *Scylla) UpdateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	cur, err := s.GetAddress(ctx, a.ID)
	if err != nil {
		return err
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	return s.writeAddress(ctx, a)
}

func (s *Scylla) DeleteAddressByUser(ctx context.Context, userID string) error {
	var id string
	if err := s.q(ctx, `SELECT address_id FROM %s.addresses_by_user WHERE user_id = ?`, userID).Scan(&id); err != nil {
		return notFound(err, "suppression adresse")
	}
	// les commandes gardent address_id, elles ne joindront plus d'adresse
	if err := s.q(ctx, `DELETE FROM %s.addresses WHERE address_id = ?`, id).Exec(); err != nil {
		return fmt.Errorf("suppression adresse: %w", err)
	}
	if err := s.q(ctx, `DELETE FROM %s.addresses_by_user WHERE user_id = ? IF EXISTS`, userID).Exec(); err != nil {
		return fmt.Errorf("suppression adresse: %w", err)
	}
	return nil
}
