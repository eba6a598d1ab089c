package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que le principal est un administrateur.
// À placer après AuthRequired.
func RequireAdmin(c *gin.Context) {
	if !Principal(c).IsAdmin() {
		abort(c, http.StatusForbidden, "Admin privileges required")
		return
	}
	c.Next()
}
