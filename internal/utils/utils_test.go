package utils

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/store"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "$2a$10$bcrypt")
	assert.Error(t, err)
}

func TestGenerateTokens(t *testing.T) {
	tok, err := GenerateAdminToken(models.Admin{ID: "a1", Role: models.AdminRoleAdmin}, "k")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return []byte("k"), nil })
	require.NoError(t, err)
	assert.Equal(t, "a1", claims["adminId"])

	tok, err = GenerateUserToken(models.User{ID: "u1"}, "k")
	require.NoError(t, err)
	claims = jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return []byte("k"), nil })
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["userId"])
}

type sent struct{ to, subject, body string }

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to, subject, body})
	return nil
}

func TestEmailNotifier(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.CreateUser(ctx, &models.User{ID: "u1", FirstName: "Asha", Email: "asha@example.com"}))
	p := &models.Product{Name: "Teak <Sofa>", Price: 1000}
	require.NoError(t, mem.CreateProduct(ctx, p))

	fs := &fakeSender{}
	n := NewEmailNotifier(fs, mem, mem)
	order := models.Order{ID: "o1", OrderGroupID: "ORD-1-ABCDEF12", ProductID: p.ID, UserID: "u1", Qty: 2, Total: 2000, Mode: models.ModeCOD, Status: models.StatusConfirmed}

	n.OrderPlaced(ctx, "u1", order.OrderGroupID, []models.Order{order})
	order.Status = models.StatusDispatched
	n.StatusChanged(ctx, order)
	n.OrderPlaced(ctx, "ghost", "ORD-2", nil)

	require.Len(t, fs.sent, 2)
	assert.Equal(t, "asha@example.com", fs.sent[0].to)
	assert.Contains(t, fs.sent[0].subject, "ORD-1-ABCDEF12")
	assert.Contains(t, fs.sent[0].body, "Teak &lt;Sofa&gt;")
	assert.Contains(t, fs.sent[0].body, "2000.00")
	assert.Contains(t, fs.sent[1].body, "dispatched")
}

func TestMailerBuildsMessage(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"})
	_, err := m.newMsg("asha@example.com", "hi", "<p>hi</p>")
	require.NoError(t, err)

	_, err = m.newMsg("not an address", "hi", "")
	assert.Error(t, err)
}
