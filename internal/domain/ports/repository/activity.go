package repository

import (
	"context"
	"time"

	"cadi-backend/internal/domain/model"
)

type ActivityFilter struct {
	Category   model.ActivityCategory
	Status     model.ActivityStatus
	Search     string
	OnlyPublic bool
}

type ActivityRepository interface {
	Create(ctx context.Context, tx Tx, a *model.Activity) error
	Update(ctx context.Context, tx Tx, a *model.Activity) error
	Delete(ctx context.Context, tx Tx, id string) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Activity, error)
	// FindByIDForUpdate locks the activity row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tx Tx, id string) (*model.Activity, error)
	// FindByCheckinTokenForUpdate locks the activity that holds the token.
	FindByCheckinTokenForUpdate(ctx context.Context, tx Tx, token string) (*model.Activity, error)
	List(ctx context.Context, tx Tx, f ActivityFilter) ([]*model.Activity, error)
	ListByProfessor(ctx context.Context, tx Tx, professorID string) ([]*model.Activity, error)
	ListByParticipant(ctx context.Context, tx Tx, userID string, from, to *time.Time) ([]*model.Activity, error)
}

type ActivityEnrollmentRepository interface {
	Find(ctx context.Context, tx Tx, activityID, userID string) (*model.ActivityEnrollment, error)
	// Create returns domain.ErrAlreadyExists on the (activity, user) unique pair.
	Create(ctx context.Context, tx Tx, e *model.ActivityEnrollment) error
	Delete(ctx context.Context, tx Tx, activityID, userID string) error
	SetAttended(ctx context.Context, tx Tx, activityID string, userIDs []string, attended bool) (int, error)
	CountAttended(ctx context.Context, tx Tx, activityID string) (int, error)
	ListByActivity(ctx context.Context, tx Tx, activityID string) ([]*model.ActivityEnrollmentView, error)
	ListUserIDs(ctx context.Context, tx Tx, activityID string) ([]string, error)
}
