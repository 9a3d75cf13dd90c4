package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.ActivityEnrollmentRepository = (*activityEnrollmentRepo)(nil)

type activityEnrollmentRepo struct{ pool *pgxpool.Pool }

func NewActivityEnrollmentRepo(pool *pgxpool.Pool) *activityEnrollmentRepo {
	return &activityEnrollmentRepo{pool: pool}
}

func (r *activityEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, activityID, userID string) (*model.ActivityEnrollment, error) {
	const q = `SELECT id, activity_id, user_id, attended, enrolled_at FROM activity_enrollments WHERE activity_id=$1 AND user_id=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, activityID, userID)
	if err != nil {
		return nil, err
	}
	var e model.ActivityEnrollment
	if err := row.Scan(&e.ID, &e.ActivityID, &e.UserID, &e.Attended, &e.EnrolledAt); err != nil {
		return nil, mapScanErr(err)
	}
	return &e, nil
}

func (r *activityEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.ActivityEnrollment) error {
	const q = `INSERT INTO activity_enrollments (id, activity_id, user_id, attended, enrolled_at) VALUES ($1,$2,$3,$4,$5);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.ActivityID, e.UserID, e.Attended, e.EnrolledAt)
	return mapWriteErr(err)
}

func (r *activityEnrollmentRepo) Delete(ctx context.Context, tx repository.Tx, activityID, userID string) error {
	return expectAffected(execSQL(ctx, r.pool, tx,
		`DELETE FROM activity_enrollments WHERE activity_id=$1 AND user_id=$2;`, activityID, userID))
}

func (r *activityEnrollmentRepo) SetAttended(ctx context.Context, tx repository.Tx, activityID string, userIDs []string, attended bool) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE activity_enrollments SET attended=$3 WHERE activity_id=$1 AND user_id = ANY($2);`,
		activityID, userIDs, attended)
	if err != nil {
		return 0, mapWriteErr(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *activityEnrollmentRepo) CountAttended(ctx context.Context, tx repository.Tx, activityID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM activity_enrollments WHERE activity_id=$1 AND attended;`, activityID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapScanErr(err)
	}
	return n, nil
}

func (r *activityEnrollmentRepo) ListByActivity(ctx context.Context, tx repository.Tx, activityID string) ([]*model.ActivityEnrollmentView, error) {
	const q = `
SELECT e.id, e.activity_id, e.user_id, e.attended, e.enrolled_at,
       u.id, u.username, u.email, u.first_name, u.last_name, u.is_staff, u.is_active, u.date_joined,
       p.role, p.phone_number, p.program, p.semester
  FROM activity_enrollments e
  JOIN users u ON u.id = e.user_id
  JOIN user_profiles p ON p.user_id = u.id
 WHERE e.activity_id=$1
 ORDER BY e.enrolled_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ActivityEnrollmentView
	for rows.Next() {
		var v model.ActivityEnrollmentView
		if err := rows.Scan(&v.ID, &v.ActivityID, &v.UserID, &v.Attended, &v.EnrolledAt,
			&v.User.ID, &v.User.Username, &v.User.Email, &v.User.FirstName, &v.User.LastName,
			&v.User.IsStaff, &v.User.IsActive, &v.User.DateJoined,
			&v.User.Profile.Role, &v.User.Profile.PhoneNumber, &v.User.Profile.Program, &v.User.Profile.Semester); err != nil {
			return nil, mapScanErr(err)
		}
		v.User.Profile.UserID = v.User.ID
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *activityEnrollmentRepo) ListUserIDs(ctx context.Context, tx repository.Tx, activityID string) ([]string, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT user_id FROM activity_enrollments WHERE activity_id=$1 ORDER BY enrolled_at;`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapScanErr(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return ids, nil
}
