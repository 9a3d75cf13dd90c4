package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var _ repository.TournamentRepository = (*tournamentRepo)(nil)

type tournamentRepo struct{ pool *pgxpool.Pool }

func NewTournamentRepo(pool *pgxpool.Pool) *tournamentRepo {
	return &tournamentRepo{pool: pool}
}

const tournamentSelect = `
SELECT id, name, sport, format, description, location, inscription_start, inscription_end,
       start_at, end_at, visibility, status, max_teams, current_teams, fixtures::text,
       COALESCE(created_by, ''), created_at, updated_at
  FROM tournaments`

func scanTournament(s scanner) (*model.Tournament, error) {
	var t model.Tournament
	var fixtures string
	if err := s.Scan(&t.ID, &t.Name, &t.Sport, &t.Format, &t.Description, &t.Location,
		&t.InscriptionStart, &t.InscriptionEnd, &t.Start, &t.End, &t.Visibility, &t.Status,
		&t.MaxTeams, &t.CurrentTeams, &fixtures, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapScanErr(err)
	}
	t.Fixtures = []byte(fixtures)
	return &t, nil
}

func fixturesParam(t *model.Tournament) string {
	if len(t.Fixtures) == 0 {
		return "{}"
	}
	return string(t.Fixtures)
}

func (r *tournamentRepo) Create(ctx context.Context, tx repository.Tx, t *model.Tournament) error {
	const q = `
INSERT INTO tournaments (
  id, name, sport, format, description, location, inscription_start, inscription_end,
  start_at, end_at, visibility, status, max_teams, current_teams, fixtures, created_by, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15::jsonb,$16,$17,$18);`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.Name, t.Sport, t.Format, t.Description, t.Location, t.InscriptionStart, t.InscriptionEnd,
		t.Start, t.End, t.Visibility, t.Status, t.MaxTeams, t.CurrentTeams, fixturesParam(t), nullIfEmpty(t.CreatedBy),
		t.CreatedAt, t.UpdatedAt)
	return mapWriteErr(err)
}

// Update leaves current_teams alone; it is owned by SetCurrentTeams.
func (r *tournamentRepo) Update(ctx context.Context, tx repository.Tx, t *model.Tournament) error {
	const q = `
UPDATE tournaments SET
  name=$2, sport=$3, format=$4, description=$5, location=$6, inscription_start=$7, inscription_end=$8,
  start_at=$9, end_at=$10, visibility=$11, status=$12, max_teams=$13, fixtures=$14::jsonb, updated_at=$15
WHERE id=$1;`
	return expectAffected(execSQL(ctx, r.pool, tx, q,
		t.ID, t.Name, t.Sport, t.Format, t.Description, t.Location, t.InscriptionStart, t.InscriptionEnd,
		t.Start, t.End, t.Visibility, t.Status, t.MaxTeams, fixturesParam(t), t.UpdatedAt))
}

func (r *tournamentRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return expectAffected(execSQL(ctx, r.pool, tx, `DELETE FROM tournaments WHERE id=$1;`, id))
}

func (r *tournamentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tournament, error) {
	row, err := pickRow(ctx, r.pool, tx, tournamentSelect+" WHERE id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanTournament(row)
}

func (r *tournamentRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Tournament, error) {
	row, err := pickRow(ctx, r.pool, tx, tournamentSelect+" WHERE id=$1 FOR UPDATE;", id)
	if err != nil {
		return nil, err
	}
	return scanTournament(row)
}

func (r *tournamentRepo) List(ctx context.Context, tx repository.Tx, f repository.TournamentFilter) ([]*model.Tournament, error) {
	var where []string
	var args []interface{}
	if f.Sport != "" {
		args = append(args, f.Sport)
		where = append(where, fmt.Sprintf("sport ILIKE $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status=$%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", len(args)))
	}
	q := tournamentSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := queryRows(ctx, r.pool, tx, q+" ORDER BY start_at;", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *tournamentRepo) SetCurrentTeams(ctx context.Context, tx repository.Tx, id string, n int) error {
	return expectAffected(execSQL(ctx, r.pool, tx,
		`UPDATE tournaments SET current_teams=$2, updated_at=NOW() WHERE id=$1;`, id, n))
}
