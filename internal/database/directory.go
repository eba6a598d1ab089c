package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

func (s *Scylla) FindUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.q(ctx, `SELECT user_id, username, first_name, last_name, email, created_at FROM %s.users WHERE user_id = ?`, id).
		Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err, "lecture utilisateur")
	}
	return &u, nil
}

func (s *Scylla) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	err := s.q(ctx, `INSERT INTO %s.users (user_id, username, first_name, last_name, email, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.CreatedAt).Exec()
	if err != nil {
		return fmt.Errorf("insertion utilisateur: %w", err)
	}
	return nil
}

func (s *Scylla) FindAdmin(ctx context.Context, id string) (*models.Admin, error) {
	var a models.Admin
	err := s.q(ctx, `SELECT admin_id, email, name, role, password_hash, created_at FROM %s.admins WHERE admin_id = ?`, id).
		Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "lecture admin")
	}
	return &a, nil
}

func (s *Scylla) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var id string
	err := s.q(ctx, `SELECT admin_id FROM %s.admins_by_email WHERE email = ?`, strings.ToLower(email)).Scan(&id)
	if err != nil {
		return nil, notFound(err, "lecture admin")
	}
	return s.FindAdmin(ctx, id)
}

// CreateAdmin réserve l'e-mail par LWT avant d'écrire la fiche.
func (s *Scylla) CreateAdmin(ctx context.Context, a *models.Admin) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Role == "" {
		a.Role = models.AdminRoleAdmin
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var existingEmail, existingID string
	applied, err := s.q(ctx, `INSERT INTO %s.admins_by_email (email, admin_id) VALUES (?, ?) IF NOT EXISTS`,
		strings.ToLower(a.Email), a.ID).ScanCAS(&existingEmail, &existingID)
	if err != nil {
		return fmt.Errorf("réservation e-mail admin: %w", err)
	}
	if !applied {
		return store.ErrAlreadyExists
	}

	err = s.q(ctx, `INSERT INTO %s.admins (admin_id, email, name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.Name, a.Role, a.PasswordHash, a.CreatedAt).Exec()
	if err != nil {
		return fmt.Errorf("insertion admin: %w", err)
	}
	return nil
}
