package utils

import (
	"context"
	"log"

	"furniture_back_end/internal/models"
	"furniture_back_end/internal/services"
	"furniture_back_end/internal/store"
)

// EmailNotifier prévient le client par e-mail. Les erreurs sont seulement
// journalisées.
type EmailNotifier struct {
	sender   Sender
	dir      store.Directory
	products store.ProductStore
}

var _ services.Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(sender Sender, dir store.Directory, products store.ProductStore) *EmailNotifier {
	return &EmailNotifier{sender: sender, dir: dir, products: products}
}

func (n *EmailNotifier) recipient(ctx context.Context, userID string) (*models.User, bool) {
	u, err := n.dir.FindUser(ctx, userID)
	if err != nil || u.Email == "" {
		log.Printf("⚠️ Pas d'e-mail pour l'utilisateur %s: %v", userID, err)
		return nil, false
	}
	return u, true
}

func (n *EmailNotifier) productName(ctx context.Context, id string) string {
	p, err := n.products.GetProduct(ctx, id)
	if err != nil {
		return id
	}
	return p.Name
}

func displayName(u *models.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

func (n *EmailNotifier) OrderPlaced(ctx context.Context, userID, groupID string, orders []models.Order) {
	u, ok := n.recipient(ctx, userID)
	if !ok {
		return
	}
	names := make(map[string]string, len(orders))
	for _, o := range orders {
		names[o.ProductID] = n.productName(ctx, o.ProductID)
	}
	html, err := OrderPlacedHTML(displayName(u), groupID, orders, names)
	if err != nil {
		log.Printf("❌ Erreur rendu e-mail commande %s: %v", groupID, err)
		return
	}
	if err := n.sender.Send(ctx, u.Email, "Order confirmed - "+groupID, html); err != nil {
		log.Printf("❌ Erreur envoi e-mail commande %s: %v", groupID, err)
		return
	}
	log.Printf("📧 E-mail de confirmation envoyé: %s (commande: %s)", u.Email, groupID)
}

func (n *EmailNotifier) StatusChanged(ctx context.Context, o models.Order) {
	u, ok := n.recipient(ctx, o.UserID)
	if !ok {
		return
	}
	html, err := StatusChangedHTML(displayName(u), n.productName(ctx, o.ProductID), o)
	if err != nil {
		log.Printf("❌ Erreur rendu e-mail statut %s: %v", o.ID, err)
		return
	}
	if err := n.sender.Send(ctx, u.Email, "Order "+o.OrderGroupID+" is "+string(o.Status), html); err != nil {
		log.Printf("❌ Erreur envoi e-mail statut %s: %v", o.ID, err)
	}
}
