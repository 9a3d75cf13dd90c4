package usecase

import (
	"context"
	"strings"
	"time"

	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ProjectUseCase = (*projectUC)(nil)

type ProjectEnrollInput struct {
	FullName string
	Email    string
	Phone    string
	UserID   *string
}

type ProjectUseCase interface {
	List(ctx context.Context, typ model.ProjectType) ([]*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, actor *model.User, p *model.Project) (*model.Project, error)
	Enroll(ctx context.Context, projectID string, in ProjectEnrollInput) (*model.ProjectEnrollment, error)
}

type projectUC struct {
	projects    repository.ProjectRepository
	enrollments repository.ProjectEnrollmentRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewProjectUseCase(projects repository.ProjectRepository, enrollments repository.ProjectEnrollmentRepository, tm repository.TransactionManager, logger *zerolog.Logger) *projectUC {
	return &projectUC{
		projects:    projects,
		enrollments: enrollments,
		tm:          tm,
		log:         logger,
	}
}

func (uc *projectUC) List(ctx context.Context, typ model.ProjectType) ([]*model.Project, error) {
	defer logging.TraceDuration(uc.log, "ProjectUC.List")()
	return uc.projects.List(ctx, repository.NoTX, typ)
}

func (uc *projectUC) Get(ctx context.Context, id string) (*model.Project, error) {
	defer logging.TraceDuration(uc.log, "ProjectUC.Get")()
	return uc.projects.FindByID(ctx, repository.NoTX, id)
}

func (uc *projectUC) Create(ctx context.Context, actor *model.User, p *model.Project) (*model.Project, error) {
	defer logging.TraceDuration(uc.log, "ProjectUC.Create")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := time.Now()
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := uc.projects.Create(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Enroll checks the quota while holding the project row lock.
func (uc *projectUC) Enroll(ctx context.Context, projectID string, in ProjectEnrollInput) (*model.ProjectEnrollment, error) {
	defer logging.TraceDuration(uc.log, "ProjectUC.Enroll")()

	e := model.NewProjectEnrollment(projectID, in.FullName, in.Email, in.Phone, in.UserID)
	verr := &model.ValidationError{}
	if e.FullName == "" {
		verr.Add("full_name", "validation.required")
	}
	if e.Email == "" {
		verr.Add("email", "validation.required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := uc.projects.FindByIDForUpdate(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if err := p.CheckEnrollable(); err != nil {
			return err
		}
		return uc.enrollments.Create(ctx, tx, e)
	})
	if err != nil {
		metrics.IncEnrollment("project", "enroll", "rejected")
		return nil, err
	}
	metrics.IncEnrollment("project", "enroll", "created")
	return e, nil
}
