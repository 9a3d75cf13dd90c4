package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.TournamentEnrollmentRepository = (*tournamentEnrollmentRepo)(nil)

type tournamentEnrollmentRepo struct{ pool *pgxpool.Pool }

func NewTournamentEnrollmentRepo(pool *pgxpool.Pool) *tournamentEnrollmentRepo {
	return &tournamentEnrollmentRepo{pool: pool}
}

const tournamentEnrollmentSelect = `SELECT id, tournament_id, user_id, status, created_at, updated_at FROM tournament_enrollments`

func scanTournamentEnrollment(s scanner) (*model.TournamentEnrollment, error) {
	var e model.TournamentEnrollment
	if err := s.Scan(&e.ID, &e.TournamentID, &e.UserID, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	return &e, nil
}

func (r *tournamentEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, tournamentID, userID string) (*model.TournamentEnrollment, error) {
	row, err := pickRow(ctx, r.pool, tx, tournamentEnrollmentSelect+" WHERE tournament_id=$1 AND user_id=$2;", tournamentID, userID)
	if err != nil {
		return nil, err
	}
	return scanTournamentEnrollment(row)
}

func (r *tournamentEnrollmentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TournamentEnrollment, error) {
	row, err := pickRow(ctx, r.pool, tx, tournamentEnrollmentSelect+" WHERE id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanTournamentEnrollment(row)
}

func (r *tournamentEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.TournamentEnrollment) error {
	const q = `INSERT INTO tournament_enrollments (id, tournament_id, user_id, status, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.TournamentID, e.UserID, e.Status, e.CreatedAt, e.UpdatedAt)
	return mapWriteErr(err)
}

func (r *tournamentEnrollmentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, e *model.TournamentEnrollment) error {
	return expectAffected(execSQL(ctx, r.pool, tx,
		`UPDATE tournament_enrollments SET status=$2, updated_at=$3 WHERE id=$1;`, e.ID, e.Status, e.UpdatedAt))
}

func (r *tournamentEnrollmentRepo) CountActive(ctx context.Context, tx repository.Tx, tournamentID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM tournament_enrollments WHERE tournament_id=$1 AND status = ANY($2);`,
		tournamentID, activeStatusStrings())
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapScanErr(err)
	}
	return n, nil
}

func activeStatusStrings() []string {
	out := make([]string, 0, len(model.ActiveEnrollmentStatuses))
	for _, s := range model.ActiveEnrollmentStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *tournamentEnrollmentRepo) ListByTournament(ctx context.Context, tx repository.Tx, tournamentID string) ([]*model.TournamentEnrollmentView, error) {
	const q = `
SELECT e.id, e.tournament_id, e.user_id, e.status, e.created_at, e.updated_at,
       u.id, u.username, u.email, u.first_name, u.last_name, u.is_staff, u.is_active, u.date_joined,
       p.role, p.phone_number, p.program, p.semester
  FROM tournament_enrollments e
  JOIN users u ON u.id = e.user_id
  JOIN user_profiles p ON p.user_id = u.id
 WHERE e.tournament_id=$1
 ORDER BY e.created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.TournamentEnrollmentView
	for rows.Next() {
		var v model.TournamentEnrollmentView
		if err := rows.Scan(&v.ID, &v.TournamentID, &v.UserID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
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
