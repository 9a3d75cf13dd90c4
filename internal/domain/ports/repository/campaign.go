package repository

import (
	"context"
	"time"

	"cadi-backend/internal/domain/model"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx Tx, c *model.Campaign) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Campaign, error)
	List(ctx context.Context, tx Tx) ([]*model.Campaign, error)
	ListDue(ctx context.Context, tx Tx, now time.Time) ([]*model.Campaign, error)
	// SaveCounters stores aggregates and marks the campaign dispatched.
	SaveCounters(ctx context.Context, tx Tx, id string, c model.CampaignCounters, dispatchedAt time.Time) error
}
