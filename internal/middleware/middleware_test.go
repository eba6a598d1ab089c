package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/auth"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(t *testing.T, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.CreateUser(ctx, &models.User{ID: "u1", Email: "u1@example.com"}))
	require.NoError(t, mem.CreateAdmin(ctx, &models.Admin{ID: "a1", Email: "a1@example.com"}))

	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(auth.NewResolver(secret, "", mem))}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(CtxUserID), "role": c.GetString(CtxRole)})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(t)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", decode(t, w)["message"])

	w = get(r, token(t, jwt.MapClaims{"userId": "ghost"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token - user/admin not found", decode(t, w)["message"])
	assert.EqualValues(t, http.StatusUnauthorized, decode(t, w)["status"])

	w = get(r, token(t, jwt.MapClaims{"userId": "u1"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", decode(t, w)["user_id"])
	assert.Equal(t, "user", decode(t, w)["role"])

	w = get(r, token(t, jwt.MapClaims{"adminId": "a1"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["role"])
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(t, RequireAdmin)

	w := get(r, token(t, jwt.MapClaims{"userId": "u1"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin privileges required", decode(t, w)["message"])

	w = get(r, token(t, jwt.MapClaims{"adminId": "a1"}))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := newRouter(t, CartRateLimit(client, 2))
	tok := token(t, jwt.MapClaims{"userId": "u1"})

	for i := 0; i < 2; i++ {
		w := get(r, tok)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := get(r, tok)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	mr.FastForward(CartCooldown + time.Second)
	w = get(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartRateLimitWithoutRedis(t *testing.T) {
	r := newRouter(t, CartRateLimit(nil, 1))
	tok := token(t, jwt.MapClaims{"userId": "u1"})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, tok).Code)
	}
}

func TestAuditPriceChangesPassesBodyThrough(t *testing.T) {
	mem := store.NewMemory()
	p := &models.Product{Name: "Sofa", Price: 1000}
	require.NoError(t, mem.CreateProduct(context.Background(), p))

	r := gin.New()
	r.PUT("/products/:id", AuditPriceChanges(mem), func(c *gin.Context) {
		var in struct {
			Price float64 `json:"price"`
		}
		require.NoError(t, c.ShouldBindJSON(&in))
		cur, _ := mem.GetProduct(c.Request.Context(), c.Param("id"))
		cur.Price = in.Price
		require.NoError(t, mem.UpdateProduct(c.Request.Context(), cur))
		c.JSON(http.StatusOK, gin.H{"price": in.Price})
	})

	req := httptest.NewRequest(http.MethodPut, "/products/"+p.ID, strings.NewReader(`{"price":1200}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got, _ := mem.GetProduct(context.Background(), p.ID)
	assert.Equal(t, 1200.0, got.Price)
}
