package repository

import (
	"context"

	"cadi-backend/internal/domain/model"
)

type ProjectRepository interface {
	Create(ctx context.Context, tx Tx, p *model.Project) error
	Update(ctx context.Context, tx Tx, p *model.Project) error
	// FindByID loads the project with its confirmed enrollment count.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Project, error)
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Project, error)
	List(ctx context.Context, tx Tx, typ model.ProjectType) ([]*model.Project, error)
}

type ProjectEnrollmentRepository interface {
	// Create returns domain.ErrAlreadyExists on the (project, email) unique pair.
	Create(ctx context.Context, tx Tx, e *model.ProjectEnrollment) error
	ListByProject(ctx context.Context, tx Tx, projectID string) ([]*model.ProjectEnrollment, error)
}
