package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const (
	userSecret  = "user-secret"
	adminSecret = "admin-secret"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func seed(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.CreateUser(ctx, &models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, m.CreateAdmin(ctx, &models.Admin{ID: "a1", Email: "ops@example.com", Role: models.AdminRoleSuperAdmin}))
	// même id des deux côtés
	require.NoError(t, m.CreateUser(ctx, &models.User{ID: "both", Email: "both@example.com"}))
	require.NoError(t, m.CreateAdmin(ctx, &models.Admin{ID: "both", Email: "both-admin@example.com"}))
	return m
}

func TestResolveUser(t *testing.T) {
	r := NewResolver(userSecret, adminSecret, seed(t))

	p, err := r.Resolve(context.Background(), sign(t, userSecret, jwt.MapClaims{"userId": "u1"}))
	require.NoError(t, err)
	assert.Equal(t, Principal{Kind: KindUser, ID: "u1"}, p)

	p, err = r.Resolve(context.Background(), sign(t, userSecret, jwt.MapClaims{"id": "u1"}))
	require.NoError(t, err)
	assert.Equal(t, KindUser, p.Kind)
}

func TestResolveAdmin(t *testing.T) {
	r := NewResolver(userSecret, adminSecret, seed(t))

	for _, key := range []string{"adminId", "userId", "id"} {
		p, err := r.Resolve(context.Background(), sign(t, adminSecret, jwt.MapClaims{key: "a1"}))
		require.NoError(t, err)
		assert.Equal(t, KindAdmin, p.Kind, key)
		assert.Equal(t, "a1", p.ID)
		assert.Equal(t, models.AdminRoleSuperAdmin, p.Role)
	}
}

func TestAdminTriedFirst(t *testing.T) {
	// sans secret admin, les deux essais utilisent JWT_SECRET
	r := NewResolver(userSecret, "", seed(t))

	p, err := r.Resolve(context.Background(), sign(t, userSecret, jwt.MapClaims{"userId": "both"}))
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, "both", p.ID)

	// id inconnu côté admin : on retombe sur l'utilisateur
	p, err = r.Resolve(context.Background(), sign(t, userSecret, jwt.MapClaims{"userId": "u1"}))
	require.NoError(t, err)
	assert.Equal(t, KindUser, p.Kind)
}

func TestUnresolved(t *testing.T) {
	r := NewResolver(userSecret, adminSecret, seed(t))
	ctx := context.Background()

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-jwt",
		"wrong secret":  sign(t, "other", jwt.MapClaims{"userId": "u1"}),
		"unknown id":    sign(t, userSecret, jwt.MapClaims{"userId": "ghost"}),
		"no id claim":   sign(t, userSecret, jwt.MapClaims{"email": "alice@example.com"}),
		"expired":       sign(t, userSecret, jwt.MapClaims{"userId": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"user as admin": sign(t, userSecret, jwt.MapClaims{"adminId": "a1"}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := r.Resolve(ctx, tok)
			require.NoError(t, err)
			assert.False(t, p.Resolved())
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
