package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.PreferenceRepository = (*preferenceRepo)(nil)

type preferenceRepo struct{ pool *pgxpool.Pool }

func NewPreferenceRepo(pool *pgxpool.Pool) *preferenceRepo {
	return &preferenceRepo{pool: pool}
}

const prefSelect = `
SELECT user_id, email_enabled, app_enabled, push_enabled, sms_enabled,
       quiet_hours_start, quiet_hours_end, updated_at
  FROM notification_preferences`

func scanPreference(s scanner) (*model.NotificationPreference, error) {
	var p model.NotificationPreference
	if err := s.Scan(&p.UserID, &p.EmailEnabled, &p.AppEnabled, &p.PushEnabled, &p.SmsEnabled,
		&p.QuietHoursStart, &p.QuietHoursEnd, &p.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return &p, nil
}

func (r *preferenceRepo) Get(ctx context.Context, tx repository.Tx, userID string) (*model.NotificationPreference, error) {
	row, err := pickRow(ctx, r.pool, tx, prefSelect+" WHERE user_id=$1;", userID)
	if err != nil {
		return nil, err
	}
	return scanPreference(row)
}

func (r *preferenceRepo) GetMany(ctx context.Context, tx repository.Tx, userIDs []string) (map[string]*model.NotificationPreference, error) {
	out := make(map[string]*model.NotificationPreference, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := queryRows(ctx, r.pool, tx, prefSelect+" WHERE user_id = ANY($1);", userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *preferenceRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.NotificationPreference) error {
	const q = `
INSERT INTO notification_preferences (user_id, email_enabled, app_enabled, push_enabled, sms_enabled, quiet_hours_start, quiet_hours_end, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  email_enabled=$2, app_enabled=$3, push_enabled=$4, sms_enabled=$5,
  quiet_hours_start=$6, quiet_hours_end=$7, updated_at=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.EmailEnabled, p.AppEnabled, p.PushEnabled, p.SmsEnabled,
		p.QuietHoursStart, p.QuietHoursEnd, p.UpdatedAt)
	return mapWriteErr(err)
}
