package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"

	"github.com/gin-gonic/gin"

	"furniture_back_end/internal/store"
)

// AuditPriceChanges journalise les changements de prix ou de remise faits
// sur PUT /products/:id, une fois la requête réussie.
func AuditPriceChanges(products store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		// Restaurer le body pour les handlers suivants
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Price *float64 `json:"price"`
			Offer *float64 `json:"offer"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || (input.Price == nil && input.Offer == nil) {
			c.Next()
			return
		}

		productID := c.Param("id")
		before, err := products.GetProduct(c.Request.Context(), productID)
		if err != nil {
			c.Next()
			return
		}

		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		after, err := products.GetProduct(c.Request.Context(), productID)
		if err != nil {
			log.Printf("⚠️ Audit prix: relecture produit %s impossible: %v", productID, err)
			return
		}
		if before.Price != after.Price || before.Offer != after.Offer {
			log.Printf("📝 Audit prix %s par %s: %.2f (-%.0f%%) → %.2f (-%.0f%%)",
				productID, c.GetString(CtxUserID), before.Price, before.Offer, after.Price, after.Offer)
		}
	}
}
