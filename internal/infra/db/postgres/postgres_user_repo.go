package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userSelect = `
SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
       u.is_staff, u.is_active, u.date_joined, u.last_login,
       p.role, p.phone_number, p.program, p.semester, p.created_at, p.updated_at
  FROM users u
  JOIN user_profiles p ON p.user_id = u.id`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsStaff, &u.IsActive, &u.DateJoined, &u.LastLoginAt,
		&u.Profile.Role, &u.Profile.PhoneNumber, &u.Profile.Program, &u.Profile.Semester,
		&u.Profile.CreatedAt, &u.Profile.UpdatedAt,
	); err != nil {
		return nil, mapScanErr(err)
	}
	u.Profile.UserID = u.ID
	return &u, nil
}

func (r *PostgresUserRepo) collect(rows pgx.Rows) ([]*model.User, error) {
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

// Create writes the user and its profile in one statement.
func (r *PostgresUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
WITH nu AS (
  INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_staff, is_active, date_joined, last_login)
  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
  RETURNING id
)
INSERT INTO user_profiles (user_id, role, phone_number, program, semester, created_at, updated_at)
SELECT nu.id, $11::varchar, $12::varchar, $13::varchar, $14::int, $15::timestamptz, $16::timestamptz FROM nu;`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsActive, u.DateJoined, u.LastLoginAt,
		u.Profile.Role, u.Profile.PhoneNumber, u.Profile.Program, u.Profile.Semester, u.Profile.CreatedAt, u.Profile.UpdatedAt)
	return mapWriteErr(err)
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const qUser = `
UPDATE users SET username=$2, email=$3, first_name=$4, last_name=$5, password_hash=$6,
       is_staff=$7, is_active=$8, last_login=$9
 WHERE id=$1;`
	const qProfile = `
UPDATE user_profiles SET role=$2, phone_number=$3, program=$4, semester=$5, updated_at=NOW()
 WHERE user_id=$1;`
	if err := expectAffected(execSQL(ctx, r.pool, tx, qUser,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsActive, u.LastLoginAt)); err != nil {
		return err
	}
	return expectAffected(execSQL(ctx, r.pool, tx, qProfile,
		u.ID, u.Profile.Role, u.Profile.PhoneNumber, u.Profile.Program, u.Profile.Semester))
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, where string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, userSelect+" WHERE "+where+" LIMIT 1;", arg)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, "u.id=$1", id)
}

func (r *PostgresUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	return r.findOne(ctx, tx, "u.username=$1", strings.TrimSpace(username))
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, tx, "LOWER(u.email)=LOWER($1)", email)
}

func (r *PostgresUserRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := queryRows(ctx, r.pool, tx, userSelect+" WHERE u.id = ANY($1) ORDER BY u.username;", ids)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *PostgresUserRepo) ListByRole(ctx context.Context, tx repository.Tx, role model.Role) ([]*model.User, error) {
	rows, err := queryRows(ctx, r.pool, tx, userSelect+" WHERE p.role=$1 AND u.is_active ORDER BY u.first_name, u.last_name, u.username;", role)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// List returns every user when limit is 0.
func (r *PostgresUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	q := userSelect + " ORDER BY u.date_joined"
	args := []interface{}{}
	if limit > 0 {
		q += " OFFSET $1 LIMIT $2"
		args = append(args, offset, limit)
	}
	rows, err := queryRows(ctx, r.pool, tx, q+";", args...)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

