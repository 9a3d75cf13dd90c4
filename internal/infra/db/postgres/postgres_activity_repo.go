package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.ActivityRepository = (*activityRepo)(nil)

type activityRepo struct{ pool *pgxpool.Pool }

func NewActivityRepo(pool *pgxpool.Pool) *activityRepo {
	return &activityRepo{pool: pool}
}

const activitySelect = `
SELECT a.id, a.title, a.category, a.description, a.location, a.start_at, a.end_at,
       a.capacity, a.available_spots, a.instructor, a.visibility, a.status, a.tags, a.notes,
       a.actual_attendees, a.assigned_professor_id, COALESCE(a.created_by, ''),
       a.checkin_token, a.checkin_expires_at, a.created_at, a.updated_at
  FROM activities a`

func scanActivity(s scanner) (*model.Activity, error) {
	var a model.Activity
	if err := s.Scan(
		&a.ID, &a.Title, &a.Category, &a.Description, &a.Location, &a.Start, &a.End,
		&a.Capacity, &a.AvailableSpots, &a.Instructor, &a.Visibility, &a.Status, &a.Tags, &a.Notes,
		&a.ActualAttendees, &a.AssignedProfessorID, &a.CreatedBy,
		&a.CheckinToken, &a.CheckinExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, mapScanErr(err)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}

func collectActivities(rows pgx.Rows) ([]*model.Activity, error) {
	defer rows.Close()
	var out []*model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *activityRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	const q = `
INSERT INTO activities (
  id, title, category, description, location, start_at, end_at, capacity, available_spots,
  instructor, visibility, status, tags, notes, actual_attendees, assigned_professor_id, created_by,
  checkin_token, checkin_expires_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21);`
	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.Title, a.Category, a.Description, a.Location, a.Start, a.End, a.Capacity, a.AvailableSpots,
		a.Instructor, a.Visibility, a.Status, a.Tags, a.Notes, a.ActualAttendees, a.AssignedProfessorID, nullIfEmpty(a.CreatedBy),
		a.CheckinToken, a.CheckinExpiresAt, a.CreatedAt, a.UpdatedAt)
	return mapWriteErr(err)
}

func (r *activityRepo) Update(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	const q = `
UPDATE activities SET
  title=$2, category=$3, description=$4, location=$5, start_at=$6, end_at=$7, capacity=$8,
  available_spots=$9, instructor=$10, visibility=$11, status=$12, tags=$13, notes=$14,
  actual_attendees=$15, assigned_professor_id=$16, checkin_token=$17, checkin_expires_at=$18,
  updated_at=$19
WHERE id=$1;`
	return expectAffected(execSQL(ctx, r.pool, tx, q,
		a.ID, a.Title, a.Category, a.Description, a.Location, a.Start, a.End, a.Capacity,
		a.AvailableSpots, a.Instructor, a.Visibility, a.Status, a.Tags, a.Notes,
		a.ActualAttendees, a.AssignedProfessorID, a.CheckinToken, a.CheckinExpiresAt, a.UpdatedAt))
}

func (r *activityRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return expectAffected(execSQL(ctx, r.pool, tx, `DELETE FROM activities WHERE id=$1;`, id))
}

func (r *activityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	row, err := pickRow(ctx, r.pool, tx, activitySelect+" WHERE a.id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanActivity(row)
}

// FindByIDForUpdate must run inside a transaction for the lock to matter.
func (r *activityRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	row, err := pickRow(ctx, r.pool, tx, activitySelect+" WHERE a.id=$1 FOR UPDATE;", id)
	if err != nil {
		return nil, err
	}
	return scanActivity(row)
}

func (r *activityRepo) FindByCheckinTokenForUpdate(ctx context.Context, tx repository.Tx, token string) (*model.Activity, error) {
	row, err := pickRow(ctx, r.pool, tx, activitySelect+" WHERE a.checkin_token=$1 FOR UPDATE;", token)
	if err != nil {
		return nil, err
	}
	return scanActivity(row)
}

func (r *activityRepo) List(ctx context.Context, tx repository.Tx, f repository.ActivityFilter) ([]*model.Activity, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("a.category=$%d", f.Category)
	}
	if f.Status != "" {
		add("a.status=$%d", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(a.title ILIKE $%[1]d OR a.description ILIKE $%[1]d OR a.location ILIKE $%[1]d)", "%"+s+"%")
	}
	if f.OnlyPublic {
		where = append(where, "a.visibility='public'")
	}
	q := activitySelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := queryRows(ctx, r.pool, tx, q+" ORDER BY a.start_at;", args...)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

func (r *activityRepo) ListByProfessor(ctx context.Context, tx repository.Tx, professorID string) ([]*model.Activity, error) {
	rows, err := queryRows(ctx, r.pool, tx, activitySelect+" WHERE a.assigned_professor_id=$1 ORDER BY a.start_at;", professorID)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}

func (r *activityRepo) ListByParticipant(ctx context.Context, tx repository.Tx, userID string, from, to *time.Time) ([]*model.Activity, error) {
	q := activitySelect + `
  JOIN activity_enrollments e ON e.activity_id = a.id
 WHERE e.user_id=$1
   AND ($2::timestamptz IS NULL OR a.end_at >= $2)
   AND ($3::timestamptz IS NULL OR a.start_at <= $3)
 ORDER BY a.start_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, from, to)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows)
}
