package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"furniture_back_end/internal/auth"
	"furniture_back_end/internal/handlers"
	"furniture_back_end/internal/middleware"
	"furniture_back_end/internal/store"
)

type Deps struct {
	Handler       *handlers.Handler
	Resolver      *auth.Resolver
	Products      store.ProductStore // pour l'audit des prix
	Redis         *redis.Client      // nil : pas de rate limit panier
	CartRateLimit int
	CORSOrigins   []string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	h := d.Handler
	authed := middleware.AuthRequired(d.Resolver)
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	products := api.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)

		admin := products.Group("", authed, middleware.RequireAdmin)
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", middleware.AuditPriceChanges(d.Products), h.UpdateProduct)
		admin.POST("/:id/stock", h.UpdateStock)
		admin.GET("/:id/movements", h.GetStockMovements)
	}

	cart := api.Group("/cart", authed)
	{
		limited := middleware.CartRateLimit(d.Redis, d.CartRateLimit)
		cart.POST("", limited, h.AddToCart)
		cart.GET("", h.GetCart)
		cart.PUT("/:lineId", limited, h.UpdateCartItem)
		cart.DELETE("/:lineId", h.RemoveCartItem)
		cart.DELETE("", h.ClearCart)
	}

	address := api.Group("/address", authed)
	{
		address.POST("", h.CreateAddress)
		address.GET("", h.GetAddress)
		address.PUT("", h.UpdateAddress)
		address.DELETE("", h.DeleteAddress)
	}

	orders := api.Group("/orders", authed)
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/admin/all", middleware.RequireAdmin, h.ListAllOrders)
		orders.GET("/:orderId", h.GetOrderGroup)
		orders.PUT("/:orderId", middleware.RequireAdmin, h.UpdateOrderStatus)
		orders.POST("/:orderId/cancel", h.CancelOrder)
		orders.GET("/:orderId/cancellations", middleware.RequireAdmin, h.ListOrderCancellations)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
