// setup-admin crée un compte administrateur et affiche son token.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"furniture_back_end/internal/config"
	"furniture_back_end/internal/database"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
	"furniture_back_end/internal/utils"
)

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "e-mail de l'admin")
	name := flag.String("name", "Admin", "nom affiché")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "mot de passe")
	role := flag.String("role", models.AdminRoleAdmin, "admin ou super_admin")
	flag.Parse()

	cfg := config.Load()
	if *email == "" || *password == "" {
		log.Fatal("❌ -email et -password sont requis")
	}
	if !cfg.UseScylla() {
		log.Fatal("❌ SCYLLA_HOSTS requis : un admin en mémoire disparaîtrait à la sortie")
	}

	ctx := context.Background()
	db, err := database.Connect(database.ScyllaConfig{
		Hosts:    cfg.ScyllaHosts,
		Keyspace: cfg.ScyllaKeyspace,
		Username: cfg.ScyllaUsername,
		Password: cfg.ScyllaPassword,
	})
	if err != nil {
		log.Fatalf("❌ Connexion ScyllaDB: %v", err)
	}
	defer db.Close()
	if err := db.InitSchema(ctx, 1); err != nil {
		log.Fatalf("❌ Initialisation du schéma: %v", err)
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("❌ Hash du mot de passe: %v", err)
	}

	admin := &models.Admin{Email: *email, Name: *name, Role: *role, PasswordHash: hash}
	if err := db.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Fatalf("❌ Un admin existe déjà avec l'e-mail %s", *email)
		}
		log.Fatalf("❌ Création admin: %v", err)
	}
	log.Printf("✅ Admin créé: %s (%s)", admin.Email, admin.ID)

	secret := cfg.JWTAdminSecret
	if secret == "" {
		secret = cfg.JWTSecret
	}
	if secret == "" {
		log.Println("⚠️ Aucun secret JWT configuré, pas de token généré")
		return
	}
	token, err := utils.GenerateAdminToken(*admin, secret)
	if err != nil {
		log.Fatalf("❌ Génération du token: %v", err)
	}
	fmt.Println(token)
}
