package models

import "time"

type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	AdminRoleAdmin      = "admin"
	AdminRoleSuperAdmin = "super_admin"
)

type Admin struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
