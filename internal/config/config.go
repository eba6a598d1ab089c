package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Settings struct {
	Port    string
	GinMode string

	JWTSecret      string
	JWTAdminSecret string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string

	RedisHost     string
	RedisPassword string
	CartTTL       time.Duration
	CartRateLimit int

	CORSOrigins             []string
	StrictStatusTransitions bool

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// Load charge .env s'il existe puis lit l'environnement.
func Load() Settings {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv(os.Getenv)
}

// FromEnv construit les réglages depuis getenv, avec les valeurs par défaut.
func FromEnv(getenv func(string) string) Settings {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	s := Settings{
		Port:           get("PORT", "8080"),
		GinMode:        get("GIN_MODE", "debug"),
		JWTSecret:      get("JWT_SECRET", ""),
		JWTAdminSecret: get("JWT_ADMIN_SECRET", ""),
		ScyllaHosts:    splitList(get("SCYLLA_HOSTS", "")),
		ScyllaKeyspace: get("SCYLLA_KEYSPACE", "furniture"),
		ScyllaUsername: get("SCYLLA_USERNAME", ""),
		ScyllaPassword: get("SCYLLA_PASSWORD", ""),
		RedisHost:      get("REDIS_HOST", ""),
		RedisPassword:  get("REDIS_PASSWORD", ""),
		CORSOrigins:    splitList(get("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		SMTPHost:       get("SMTP_HOST", ""),
		SMTPUsername:   get("SMTP_USERNAME", ""),
		SMTPPassword:   get("SMTP_PASSWORD", ""),
		MailFrom:       get("MAIL_FROM", ""),
	}

	s.CartTTL = time.Duration(atoi(get("CART_TTL_DAYS", "30"), 30)) * 24 * time.Hour
	s.CartRateLimit = atoi(get("CART_RATE_LIMIT", "20"), 20)
	s.SMTPPort = atoi(get("SMTP_PORT", "587"), 587)
	s.StrictStatusTransitions, _ = strconv.ParseBool(get("STRICT_STATUS_TRANSITIONS", "false"))

	if s.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET manquant, aucun token ne sera accepté")
	}
	return s
}

func (s Settings) UseScylla() bool { return len(s.ScyllaHosts) > 0 }
func (s Settings) UseRedis() bool  { return s.RedisHost != "" }
func (s Settings) MailEnabled() bool {
	return s.SMTPHost != "" && s.MailFrom != ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️ Valeur numérique invalide %q, défaut %d", v, def)
		return def
	}
	return n
}
