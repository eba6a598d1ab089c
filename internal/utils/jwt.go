package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"furniture_back_end/internal/models"
)

const TokenTTL = 7 * 24 * time.Hour

func GenerateUserToken(user models.User, secret string) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"exp":    time.Now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// GenerateAdminToken signe avec le secret admin ; le resolver le retrouve par adminId.
func GenerateAdminToken(admin models.Admin, secret string) (string, error) {
	claims := jwt.MapClaims{
		"adminId": admin.ID,
		"email":   admin.Email,
		"role":    admin.Role,
		"exp":     time.Now().Add(TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
