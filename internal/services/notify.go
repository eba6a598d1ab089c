package services

import (
	"context"

	"furniture_back_end/internal/models"
)

// Notifier prévient le client ; les appels sont best effort et ne font
// jamais échouer une opération.
type Notifier interface {
	OrderPlaced(ctx context.Context, userID, groupID string, orders []models.Order)
	StatusChanged(ctx context.Context, order models.Order)
}

type NopNotifier struct{}

func (NopNotifier) OrderPlaced(context.Context, string, string, []models.Order) {}
func (NopNotifier) StatusChanged(context.Context, models.Order)                 {}

// notifyAsync détache la notification du cycle de vie de la requête.
func notifyAsync(ctx context.Context, f func(ctx context.Context)) {
	go f(context.WithoutCancel(ctx))
}
