package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.CampaignRepository = (*campaignRepo)(nil)

type campaignRepo struct{ pool *pgxpool.Pool }

func NewCampaignRepo(pool *pgxpool.Pool) *campaignRepo {
	return &campaignRepo{pool: pool}
}

const campaignSelect = `
SELECT id, name, message, channel_option, segment, selected_user_ids, schedule_at,
       total_recipients, app_sent, emails_sent, COALESCE(created_by, ''), created_at, dispatched_at
  FROM campaigns`

func scanCampaign(s scanner) (*model.Campaign, error) {
	var c model.Campaign
	if err := s.Scan(&c.ID, &c.Name, &c.Message, &c.ChannelOption, &c.Segment, &c.SelectedUserIDs, &c.ScheduleAt,
		&c.TotalRecipients, &c.AppSent, &c.EmailsSent, &c.CreatedBy, &c.CreatedAt, &c.DispatchedAt); err != nil {
		return nil, mapScanErr(err)
	}
	if c.SelectedUserIDs == nil {
		c.SelectedUserIDs = []string{}
	}
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]*model.Campaign, error) {
	defer rows.Close()
	var out []*model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *campaignRepo) Create(ctx context.Context, tx repository.Tx, c *model.Campaign) error {
	const q = `
INSERT INTO campaigns (id, name, message, channel_option, segment, selected_user_ids, schedule_at, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	ids := c.SelectedUserIDs
	if ids == nil {
		ids = []string{}
	}
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Message, c.ChannelOption, c.Segment, ids, c.ScheduleAt,
		nullIfEmpty(c.CreatedBy), c.CreatedAt)
	return mapWriteErr(err)
}

func (r *campaignRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Campaign, error) {
	row, err := pickRow(ctx, r.pool, tx, campaignSelect+" WHERE id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanCampaign(row)
}

func (r *campaignRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Campaign, error) {
	rows, err := queryRows(ctx, r.pool, tx, campaignSelect+" ORDER BY created_at DESC;")
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

func (r *campaignRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Campaign, error) {
	rows, err := queryRows(ctx, r.pool, tx,
		campaignSelect+" WHERE dispatched_at IS NULL AND schedule_at IS NOT NULL AND schedule_at <= $1 ORDER BY schedule_at;", now)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

func (r *campaignRepo) SaveCounters(ctx context.Context, tx repository.Tx, id string, c model.CampaignCounters, dispatchedAt time.Time) error {
	const q = `
UPDATE campaigns SET total_recipients=$2, app_sent=$3, emails_sent=$4,
       dispatched_at=COALESCE(dispatched_at, $5)
 WHERE id=$1;`
	return expectAffected(execSQL(ctx, r.pool, tx, q, id, c.TotalRecipients, c.AppSent, c.EmailsSent, dispatchedAt))
}
