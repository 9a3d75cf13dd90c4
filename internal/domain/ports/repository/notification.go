package repository

import (
	"context"
	"time"

	"cadi-backend/internal/domain/model"
)

// -----------------------------
// Notifications
// -----------------------------

type NotificationRepository interface {
	Create(ctx context.Context, tx Tx, n *model.Notification) error
	// UpdateDelivery persists status, sent_at and scheduled_for.
	UpdateDelivery(ctx context.Context, tx Tx, n *model.Notification) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Notification, error)
	// ExistsRecent backs the dispatch dedup window.
	ExistsRecent(ctx context.Context, tx Tx, userID, activityID, title string, since time.Time) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, tx Tx, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, tx Tx, userID string, at time.Time) (int, error)
	ListDueScheduled(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Notification, error)
	CampaignCounters(ctx context.Context, tx Tx, campaignID string) (model.CampaignCounters, error)
}
