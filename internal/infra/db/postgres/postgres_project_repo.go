package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

var (
	_ repository.ProjectRepository           = (*projectRepo)(nil)
	_ repository.ProjectEnrollmentRepository = (*projectEnrollmentRepo)(nil)
)

type projectRepo struct{ pool *pgxpool.Pool }

func NewProjectRepo(pool *pgxpool.Pool) *projectRepo {
	return &projectRepo{pool: pool}
}

const projectSelect = `
SELECT p.id, p.name, p.type, p.area, p.subtype, p.description, p.total_quota,
       p.start_date, p.end_date, p.status, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM project_enrollments pe WHERE pe.project_id = p.id AND pe.status = 'confirmed')
  FROM projects p`

func scanProject(s scanner) (*model.Project, error) {
	var p model.Project
	if err := s.Scan(&p.ID, &p.Name, &p.Type, &p.Area, &p.Subtype, &p.Description, &p.TotalQuota,
		&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.Confirmed); err != nil {
		return nil, mapScanErr(err)
	}
	return &p, nil
}

func (r *projectRepo) Create(ctx context.Context, tx repository.Tx, p *model.Project) error {
	const q = `
INSERT INTO projects (id, name, type, area, subtype, description, total_quota, start_date, end_date, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Type, p.Area, p.Subtype, p.Description, p.TotalQuota,
		p.StartDate, p.EndDate, p.Status, p.CreatedAt, p.UpdatedAt)
	return mapWriteErr(err)
}

func (r *projectRepo) Update(ctx context.Context, tx repository.Tx, p *model.Project) error {
	const q = `
UPDATE projects SET name=$2, type=$3, area=$4, subtype=$5, description=$6, total_quota=$7,
       start_date=$8, end_date=$9, status=$10, updated_at=$11
 WHERE id=$1;`
	return expectAffected(execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Type, p.Area, p.Subtype, p.Description,
		p.TotalQuota, p.StartDate, p.EndDate, p.Status, p.UpdatedAt))
}

func (r *projectRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Project, error) {
	row, err := pickRow(ctx, r.pool, tx, projectSelect+" WHERE p.id=$1;", id)
	if err != nil {
		return nil, err
	}
	return scanProject(row)
}

func (r *projectRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Project, error) {
	row, err := pickRow(ctx, r.pool, tx, projectSelect+" WHERE p.id=$1 FOR UPDATE OF p;", id)
	if err != nil {
		return nil, err
	}
	return scanProject(row)
}

func (r *projectRepo) List(ctx context.Context, tx repository.Tx, typ model.ProjectType) ([]*model.Project, error) {
	var rows pgx.Rows
	var err error
	if typ != "" {
		rows, err = queryRows(ctx, r.pool, tx, projectSelect+" WHERE p.type=$1 ORDER BY p.name;", typ)
	} else {
		rows, err = queryRows(ctx, r.pool, tx, projectSelect+" ORDER BY p.name;")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

type projectEnrollmentRepo struct{ pool *pgxpool.Pool }

func NewProjectEnrollmentRepo(pool *pgxpool.Pool) *projectEnrollmentRepo {
	return &projectEnrollmentRepo{pool: pool}
}

func (r *projectEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.ProjectEnrollment) error {
	const q = `
INSERT INTO project_enrollments (id, project_id, user_id, full_name, email, phone, status, enrollment_date, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.ProjectID, e.UserID, e.FullName, e.Email, e.Phone, e.Status,
		e.EnrollmentDate, e.UpdatedAt)
	return mapWriteErr(err)
}

func (r *projectEnrollmentRepo) ListByProject(ctx context.Context, tx repository.Tx, projectID string) ([]*model.ProjectEnrollment, error) {
	const q = `
SELECT id, project_id, user_id, full_name, email, phone, status, enrollment_date, updated_at
  FROM project_enrollments WHERE project_id=$1 ORDER BY enrollment_date;`
	rows, err := queryRows(ctx, r.pool, tx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ProjectEnrollment
	for rows.Next() {
		var e model.ProjectEnrollment
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.FullName, &e.Email, &e.Phone, &e.Status,
			&e.EnrollmentDate, &e.UpdatedAt); err != nil {
			return nil, mapScanErr(err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
