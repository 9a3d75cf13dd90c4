package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.DeliveryLog) error {
	const q = `
INSERT INTO delivery_logs (id, notification_id, channel, status, detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.NotificationID, l.Channel, l.Status, l.Detail, l.CreatedAt)
	return mapWriteErr(err)
}

func (r *notificationLogRepo) ListByNotifications(ctx context.Context, tx repository.Tx, notificationIDs []string) (map[string][]model.DeliveryLog, error) {
	out := make(map[string][]model.DeliveryLog, len(notificationIDs))
	if len(notificationIDs) == 0 {
		return out, nil
	}
	const q = `
SELECT id, notification_id, channel, status, detail, created_at
  FROM delivery_logs
 WHERE notification_id = ANY($1)
 ORDER BY created_at`
	rows, err := queryRows(ctx, r.pool, tx, q, notificationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l model.DeliveryLog
		if err := rows.Scan(&l.ID, &l.NotificationID, &l.Channel, &l.Status, &l.Detail, &l.CreatedAt); err != nil {
			return nil, mapScanErr(err)
		}
		out[l.NotificationID] = append(out[l.NotificationID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
