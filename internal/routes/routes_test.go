package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/auth"
	"furniture_back_end/internal/handlers"
	"furniture_back_end/internal/models"
	"furniture_back_end/internal/services"
	"furniture_back_end/internal/store"
	"furniture_back_end/internal/utils"
)

const (
	userSecret  = "user-secret"
	adminSecret = "admin-secret"
)

type testServer struct {
	router     *gin.Engine
	mem        *store.Memory
	userToken  string
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	st := mem.Store()
	ctx := context.Background()

	u := &models.User{Username: "asha", FirstName: "Asha", Email: "asha@shop.test"}
	require.NoError(t, st.Directory.CreateUser(ctx, u))
	a := &models.Admin{Email: "root@shop.test", Name: "Root"}
	require.NoError(t, st.Directory.CreateAdmin(ctx, a))

	userToken, err := utils.GenerateUserToken(*u, userSecret)
	require.NoError(t, err)
	adminToken, err := utils.GenerateAdminToken(*a, adminSecret)
	require.NoError(t, err)

	h := &handlers.Handler{
		Cart:     services.NewCartService(st),
		Address:  services.NewAddressService(st),
		Checkout: services.NewCheckoutService(st, nil),
		Orders:   services.NewOrderService(st, nil, false),
		Products: services.NewProductService(st),
	}
	r := gin.New()
	RegisterRoutes(r, Deps{
		Handler:  h,
		Resolver: auth.NewResolver(userSecret, adminSecret, st.Directory),
		Products: st.Products,
	})
	return &testServer{router: r, mem: mem, userToken: userToken, adminToken: adminToken}
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) createProduct(t *testing.T, name string, price, offer float64, stock int) string {
	t.Helper()
	code, body := s.doJSON(t, http.MethodPost, "/api/products", s.adminToken, gin.H{
		"pname": name, "price": price, "offer": offer, "stock_count": stock,
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["product"].(map[string]any)["_id"].(string)
}

func (s *testServer) stock(t *testing.T, id string) int {
	t.Helper()
	code, body := s.doJSON(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, code)
	return int(body["product"].(map[string]any)["stock_count"].(float64))
}

func (s *testServer) createAddress(t *testing.T) string {
	t.Helper()
	code, body := s.doJSON(t, http.MethodPost, "/api/address", s.userToken, gin.H{
		"mob1": "9876543210", "postalcode": "411001", "address": "12 MG Road",
		"area": "Camp", "landmark": "Near temple", "city": "Pune", "state": "MH",
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["address"].(map[string]any)["_id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body := s.doJSON(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthFailures(t *testing.T) {
	s := newTestServer(t)

	code, body := s.doJSON(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", body["message"])

	code, body = s.doJSON(t, http.MethodGet, "/api/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token - user/admin not found", body["message"])

	ghost, err := utils.GenerateUserToken(models.User{ID: "ghost"}, userSecret)
	require.NoError(t, err)
	code, body = s.doJSON(t, http.MethodGet, "/api/cart", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token - user/admin not found", body["message"])

	code, body = s.doJSON(t, http.MethodPost, "/api/products", s.userToken, gin.H{"pname": "X", "price": 1})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin privileges required", body["message"])
	assert.EqualValues(t, http.StatusForbidden, body["status"])
}

func TestValidationErrorsCarryFields(t *testing.T) {
	s := newTestServer(t)

	code, body := s.doJSON(t, http.MethodPost, "/api/address", s.userToken, gin.H{
		"mob1": "123", "postalcode": "411001", "address": "a", "area": "b",
		"landmark": "c", "city": "d", "state": "e",
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "mob1", errs[0].(map[string]any)["field"])
	assert.Equal(t, "Mobile number 1 must be 10 digits", errs[0].(map[string]any)["message"])
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	sofa := s.createProduct(t, "Teak Sofa", 1000, 10, 5)
	table := s.createProduct(t, "Oak Table", 700, 0, 2)
	addr := s.createAddress(t)

	code, body := s.doJSON(t, http.MethodPost, "/api/cart", s.userToken, gin.H{"product": sofa, "qty": 2})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "Added to Cart", body["message"])
	code, _ = s.doJSON(t, http.MethodPost, "/api/cart", s.userToken, gin.H{"product": table})
	require.Equal(t, http.StatusCreated, code)

	code, body = s.doJSON(t, http.MethodPost, "/api/orders", s.userToken, gin.H{"address": addr, "total": 2500, "mode": "cod"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, services.MsgOrderPlaced, body["message"])
	groupID := body["orderId"].(string)
	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{8}$`, groupID)
	orders := body["orders"].([]any)
	require.Len(t, orders, 2)

	assert.Equal(t, 3, s.stock(t, sofa))
	assert.Equal(t, 1, s.stock(t, table))

	code, body = s.doJSON(t, http.MethodGet, "/api/cart", s.userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])

	code, body = s.doJSON(t, http.MethodGet, "/api/orders/"+groupID, s.userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"], 2)

	var sofaLine, tableLine string
	for _, o := range orders {
		m := o.(map[string]any)
		assert.EqualValues(t, 2500, m["total"])
		if m["product"] == sofa {
			sofaLine = m["_id"].(string)
		} else {
			tableLine = m["_id"].(string)
		}
	}

	// annulation client : +1 au stock, quelle que soit la quantité
	code, body = s.doJSON(t, http.MethodPost, "/api/orders/"+sofaLine+"/cancel", s.userToken, gin.H{"reason": "changed my mind"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 4, s.stock(t, sofa))

	code, _ = s.doJSON(t, http.MethodGet, "/api/orders/"+sofaLine+"/cancellations", s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, body = s.doJSON(t, http.MethodGet, "/api/orders/"+sofaLine+"/cancellations", s.adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	recs := body["cancellations"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, "changed my mind", recs[0].(map[string]any)["reason"])

	code, body = s.doJSON(t, http.MethodPost, "/api/orders/"+sofaLine+"/cancel", s.userToken, gin.H{"reason": "again"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Order is already cancelled", body["message"])

	code, body = s.doJSON(t, http.MethodPost, "/api/orders/"+tableLine+"/cancel", s.userToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["errors"])

	code, _ = s.doJSON(t, http.MethodPut, "/api/orders/"+tableLine, s.userToken, gin.H{"status": "dispatched"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.doJSON(t, http.MethodPut, "/api/orders/"+tableLine, s.adminToken, gin.H{"status": "dispatched"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "dispatched", body["order"].(map[string]any)["status"])
	assert.Equal(t, 1, s.stock(t, table))

	code, body = s.doJSON(t, http.MethodGet, "/api/orders/admin/all", s.adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"], 2)
}

func TestCheckoutOutOfStockOverHTTP(t *testing.T) {
	s := newTestServer(t)
	lamp := s.createProduct(t, "Lamp", 50, 0, 1)
	addr := s.createAddress(t)

	code, _ := s.doJSON(t, http.MethodPost, "/api/cart", s.userToken, gin.H{"product": lamp, "qty": 1})
	require.Equal(t, http.StatusCreated, code)

	code, body := s.doJSON(t, http.MethodPost, "/api/products/"+lamp+"/stock", s.adminToken, gin.H{"type": "adjustment", "quantity": 0})
	require.Equal(t, http.StatusOK, code, body)

	code, body = s.doJSON(t, http.MethodPost, "/api/orders", s.userToken, gin.H{"address": addr, "total": 50})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Only 0 items of Lamp available in stock", body["message"])

	code, body = s.doJSON(t, http.MethodGet, "/api/cart", s.userToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 1)

	all, err := s.mem.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
