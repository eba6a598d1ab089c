// Package handlers expose le cœur commandes/stock en JSON. Chaque réponse,
// erreur comprise, porte l'enveloppe {message, status, ...}.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"furniture_back_end/internal/apperr"
	"furniture_back_end/internal/middleware"
	"furniture_back_end/internal/services"
)

type Handler struct {
	Cart     *services.CartService
	Address  *services.AddressService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Products *services.ProductService
}

func init() {
	// les erreurs de validation parlent en noms JSON
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func respond(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{"message": message, "status": code}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// fail traduit une erreur en réponse ; les détails internes restent dans les logs.
func fail(c *gin.Context, err error, fallback string) {
	ae := apperr.As(err, fallback)
	code := ae.Kind.HTTPStatus()
	if ae.Kind == apperr.KindInternal {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"message": ae.Message, "status": code}
	if len(ae.Fields) > 0 {
		body["errors"] = ae.Fields
	}
	c.AbortWithStatusJSON(code, body)
}

// bindJSON lie le corps et répond 400 avec les erreurs de champ.
// messages associe un nom de champ JSON à son message.
func bindJSON(c *gin.Context, dst any, messages map[string]string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	fail(c, validationError(err, messages), "Validation failed")
	return false
}

func validationError(err error, messages map[string]string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			msg, ok := messages[fe.Field()]
			if !ok {
				msg = fe.Field() + " is invalid"
			}
			fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: msg})
		}
		return apperr.Validation("Validation failed", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		msg, ok := messages[typeErr.Field]
		if !ok {
			msg = typeErr.Field + " has the wrong type"
		}
		return apperr.Validation("Validation failed", apperr.FieldError{Field: typeErr.Field, Message: msg})
	}
	return apperr.Validation("Validation failed", apperr.FieldError{Field: "body", Message: "Invalid request body"})
}

func userID(c *gin.Context) string {
	return middleware.Principal(c).ID
}
