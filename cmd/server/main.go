package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"furniture_back_end/internal/auth"
	"furniture_back_end/internal/cache"
	"furniture_back_end/internal/config"
	"furniture_back_end/internal/database"
	"furniture_back_end/internal/handlers"
	"furniture_back_end/internal/routes"
	"furniture_back_end/internal/services"
	"furniture_back_end/internal/store"
	"furniture_back_end/internal/utils"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// ✅ Panier Redis si configuré, sinon le store principal garde les lignes
	var rdb *redis.Client
	if cfg.UseRedis() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPassword)
		if err != nil {
			log.Printf("⚠️ Redis indisponible, panier sans cache: %v", err)
		} else {
			rdb = client
			defer rdb.Close()
			st.Carts = cache.NewCartStore(rdb, cfg.CartTTL)
		}
	}

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.MailEnabled() {
		mailer := utils.NewMailer(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		notifier = utils.NewEmailNotifier(mailer, st.Directory, st.Products)
		log.Println("✅ Notifications e-mail activées")
	} else {
		log.Println("⚠️ SMTP non configuré, notifications désactivées")
	}

	h := &handlers.Handler{
		Cart:     services.NewCartService(st),
		Address:  services.NewAddressService(st),
		Checkout: services.NewCheckoutService(st, notifier),
		Orders:   services.NewOrderService(st, notifier, cfg.StrictStatusTransitions),
		Products: services.NewProductService(st),
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	routes.RegisterRoutes(r, routes.Deps{
		Handler:       h,
		Resolver:      auth.NewResolver(cfg.JWTSecret, cfg.JWTAdminSecret, st.Directory),
		Products:      st.Products,
		Redis:         rdb,
		CartRateLimit: cfg.CartRateLimit,
		CORSOrigins:   cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 Serveur lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Erreur serveur: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Arrêt forcé: %v", err)
	}
}

// openStore choisit ScyllaDB si SCYLLA_HOSTS est défini, sinon la mémoire.
func openStore(ctx context.Context, cfg config.Settings) (store.Store, func()) {
	if !cfg.UseScylla() {
		log.Println("⚠️ SCYLLA_HOSTS absent, store en mémoire (données perdues à l'arrêt)")
		return store.NewMemory().Store(), func() {}
	}

	db, err := database.Connect(database.ScyllaConfig{
		Hosts:    cfg.ScyllaHosts,
		Keyspace: cfg.ScyllaKeyspace,
		Username: cfg.ScyllaUsername,
		Password: cfg.ScyllaPassword,
	})
	if err != nil {
		log.Fatalf("❌ Connexion ScyllaDB: %v", err)
	}
	if err := db.InitSchema(ctx, 1); err != nil {
		db.Close()
		log.Fatalf("❌ Initialisation du schéma: %v", err)
	}
	return db.Store(), db.Close
}
