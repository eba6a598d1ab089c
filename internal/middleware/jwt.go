package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"furniture_back_end/internal/auth"
)

const (
	CtxPrincipal = "principal"
	CtxUserID    = "user_id"
	CtxRole      = "role"
)

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"message": message, "status": code})
}

// AuthRequired résout le bearer token et place le principal dans le contexte.
func AuthRequired(r *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		p, err := r.Resolve(c.Request.Context(), token)
		if err != nil {
			log.Printf("❌ Erreur résolution du principal: %v", err)
			abort(c, http.StatusForbidden, "Invalid or expired token")
			return
		}
		if !p.Resolved() {
			abort(c, http.StatusUnauthorized, "Invalid token - user/admin not found")
			return
		}

		c.Set(CtxPrincipal, p)
		c.Set(CtxUserID, p.ID)
		c.Set(CtxRole, p.Kind.String())
		c.Next()
	}
}

// Principal relit le principal posé par AuthRequired.
func Principal(c *gin.Context) auth.Principal {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return auth.Principal{}
	}
	p, _ := v.(auth.Principal)
	return p
}
