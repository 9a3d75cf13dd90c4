package repository

import (
	"context"

	"cadi-backend/internal/domain/model"
)

// -----------------------------
// Notification delivery log
// -----------------------------

type NotificationLogRepository interface {
	// Save records one delivery attempt.
	Save(ctx context.Context, tx Tx, l *model.DeliveryLog) error
	// ListByNotifications groups logs by notification id.
	ListByNotifications(ctx context.Context, tx Tx, notificationIDs []string) (map[string][]model.DeliveryLog, error)
}
