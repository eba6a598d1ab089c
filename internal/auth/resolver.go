// Package auth résout un bearer token en principal : admin d'abord, puis
// utilisateur.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"furniture_back_end/internal/store"
)

type Kind int

const (
	Unresolved Kind = iota
	KindUser
	KindAdmin
)

func (k Kind) String() string {
	switch k {
	case KindAdmin:
		return "admin"
	case KindUser:
		return "user"
	default:
		return "unresolved"
	}
}

// Principal est le résultat de la résolution. Role n'est renseigné que pour
// un admin (admin ou super_admin).
type Principal struct {
	Kind Kind
	ID   string
	Role string
}

func (p Principal) Resolved() bool { return p.Kind != Unresolved }
func (p Principal) IsAdmin() bool  { return p.Kind == KindAdmin }

var (
	adminClaimKeys = []string{"adminId", "userId", "id"}
	userClaimKeys  = []string{"userId", "id"}
)

// Resolver essaie le secret admin puis le secret utilisateur ; chaque essai
// doit aussi retrouver le principal dans l'annuaire.
type Resolver struct {
	userSecret  []byte
	adminSecret []byte
	dir         store.Directory
}

// NewResolver : adminSecret vide retombe sur userSecret.
func NewResolver(userSecret, adminSecret string, dir store.Directory) *Resolver {
	if adminSecret == "" {
		adminSecret = userSecret
	}
	return &Resolver{userSecret: []byte(userSecret), adminSecret: []byte(adminSecret), dir: dir}
}

// BearerToken extrait le token d'un header Authorization, "" sinon.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Resolve ne renvoie une erreur que pour une panne d'annuaire ; un token
// invalide ou un principal inconnu donnent Unresolved.
func (r *Resolver) Resolve(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, nil
	}

	if claims, ok := parseClaims(token, r.adminSecret); ok {
		if id := firstClaim(claims, adminClaimKeys); id != "" {
			a, err := r.dir.FindAdmin(ctx, id)
			switch {
			case err == nil:
				return Principal{Kind: KindAdmin, ID: a.ID, Role: a.Role}, nil
			case !errors.Is(err, store.ErrNotFound):
				return Principal{}, fmt.Errorf("find admin: %w", err)
			}
		}
	}

	if claims, ok := parseClaims(token, r.userSecret); ok {
		if id := firstClaim(claims, userClaimKeys); id != "" {
			u, err := r.dir.FindUser(ctx, id)
			switch {
			case err == nil:
				return Principal{Kind: KindUser, ID: u.ID}, nil
			case !errors.Is(err, store.ErrNotFound):
				return Principal{}, fmt.Errorf("find user: %w", err)
			}
		}
	}

	return Principal{}, nil
}

func parseClaims(token string, secret []byte) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err != nil && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			log.Printf("⚠️ Token rejeté: %v", err)
		}
		return nil, false
	}
	return claims, true
}

func firstClaim(claims jwt.MapClaims, keys []string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
