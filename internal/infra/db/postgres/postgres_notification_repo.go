package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

const notificationSelect = `
SELECT id, user_id, activity_id, campaign_id, title, body, channel, status, priority,
       scheduled_for, sent_at, read_at, metadata::text, created_at
  FROM notifications`

func scanNotification(s scanner) (*model.Notification, error) {
	var n model.Notification
	var meta string
	if err := s.Scan(&n.ID, &n.UserID, &n.ActivityID, &n.CampaignID, &n.Title, &n.Body, &n.Channel,
		&n.Status, &n.Priority, &n.ScheduledFor, &n.SentAt, &n.ReadAt, &meta, &n.CreatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	n.Metadata = map[string]any{}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &n, nil
}

func collectNotifications(rows pgx.Rows) ([]*model.Notification, error) {
	defer rows.Close()
	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *notificationRepo) Create(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if n.Metadata == nil {
		meta = []byte("{}")
	}
	const q = `
INSERT INTO notifications (
  id, user_id, activity_id, campaign_id, title, body, channel, status, priority,
  scheduled_for, sent_at, read_at, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::jsonb,$14);`
	_, err = execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.ActivityID, n.CampaignID, n.Title, n.Body, n.Channel,
		n.Status, n.Priority, n.ScheduledFor, n.SentAt, n.ReadAt, string(meta), n.CreatedAt)
	return mapWriteErr(err)
}

func (r *notificationRepo) UpdateDelivery(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	return expectAffected(execSQL(ctx, r.pool, tx,
		`UPDATE notifications SET status=$2, sent_at=$3, scheduled_for=$4 WHERE id=$1;`,
		n.ID, n.Status, n.SentAt, n.ScheduledFor))
}

func (r *notificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	row, err := pickRow(ctx, r.pool, tx, notificationSelect+" WHERE id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanNotification(row)
}

func (r *notificationRepo) ExistsRecent(ctx context.Context, tx repository.Tx, userID, activityID, title string, since time.Time) (bool, error) {
	const q = `
SELECT EXISTS(
    SELECT 1 FROM notifications
    WHERE user_id=$1 AND activity_id=$2 AND title=$3 AND created_at >= $4
)`
	row, err := pickRow(ctx, r.pool, tx, q, userID, activityID, title, since)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, mapScanErr(err)
	}
	return exists, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := queryRows(ctx, r.pool, tx, notificationSelect+" WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2;", userID, limit)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID, id string, at time.Time) error {
	return expectAffected(execSQL(ctx, r.pool, tx,
		`UPDATE notifications SET read_at=COALESCE(read_at, $3) WHERE id=$1 AND user_id=$2;`, id, userID, at))
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tx repository.Tx, userID string, at time.Time) (int, error) {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE notifications SET read_at=$2 WHERE user_id=$1 AND read_at IS NULL;`, userID, at)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *notificationRepo) ListDueScheduled(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	q := notificationSelect + " WHERE status='scheduled' AND scheduled_for <= $1 ORDER BY scheduled_for LIMIT $2"
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE SKIP LOCKED"
	}
	rows, err := queryRows(ctx, r.pool, tx, q+";", now, limit)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

func (r *notificationRepo) CampaignCounters(ctx context.Context, tx repository.Tx, campaignID string) (model.CampaignCounters, error) {
	const q = `
SELECT COUNT(DISTINCT user_id),
       COUNT(*) FILTER (WHERE channel='app' AND status='sent'),
       COUNT(*) FILTER (WHERE channel='email' AND status='sent')
  FROM notifications WHERE campaign_id=$1;`
	var c model.CampaignCounters
	row, err := pickRow(ctx, r.pool, tx, q, campaignID)
	if err != nil {
		return c, err
	}
	if err := row.Scan(&c.TotalRecipients, &c.AppSent, &c.EmailsSent); err != nil {
		return c, mapScanErr(err)
	}
	return c, nil
}
