package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivityUseCase = (*activityUC)(nil)

// ActivityPatch carries the fields an admin may change. Nil means unchanged;
// an empty AssignedProfessorID clears the assignment.
type ActivityPatch struct {
	Title               *string
	Category            *model.ActivityCategory
	Description         *string
	Location            *string
	Start               *time.Time
	End                 *time.Time
	Capacity            *int
	AvailableSpots      *int
	Instructor          *string
	Visibility          *model.Visibility
	Status              *model.ActivityStatus
	Tags                []string
	Notes               *string
	AssignedProfessorID *string
}

// ProfessorPatch is the subset the assigned professor may change.
type ProfessorPatch struct {
	Notes    *string
	Location *string
	Status   *model.ActivityStatus
}

type ActivityUseCase interface {
	List(ctx context.Context, f repository.ActivityFilter) ([]*model.Activity, error)
	Get(ctx context.Context, id string) (*model.Activity, error)
	Create(ctx context.Context, actor *model.User, a *model.Activity) (*model.Activity, error)
	Update(ctx context.Context, actor *model.User, id string, p ActivityPatch) (*model.Activity, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	ListEnrollments(ctx context.Context, actor *model.User, id string) ([]*model.ActivityEnrollmentView, error)
	ListForParticipant(ctx context.Context, userID string, from, to *time.Time) ([]*model.Activity, error)

	ListForProfessor(ctx context.Context, actor *model.User) ([]*model.Activity, error)
	ProfessorUpdate(ctx context.Context, actor *model.User, id string, p ProfessorPatch) (*model.Activity, error)
	MarkAttendance(ctx context.Context, actor *model.User, id string, attended, notAttended []string) (*model.Activity, error)
}

type activityUC struct {
	activities  repository.ActivityRepository
	enrollments repository.ActivityEnrollmentRepository
	users       repository.UserRepository
	notifier    NotificationUseCase
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewActivityUseCase(
	activities repository.ActivityRepository,
	enrollments repository.ActivityEnrollmentRepository,
	users repository.UserRepository,
	notifier NotificationUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *activityUC {
	return &activityUC{
		activities:  activities,
		enrollments: enrollments,
		users:       users,
		notifier:    notifier,
		tm:          tm,
		log:         logger,
	}
}

func (uc *activityUC) List(ctx context.Context, f repository.ActivityFilter) ([]*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.List")()
	return uc.activities.List(ctx, repository.NoTX, f)
}

func (uc *activityUC) Get(ctx context.Context, id string) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.Get")()
	return uc.activities.FindByID(ctx, repository.NoTX, id)
}

func (uc *activityUC) Create(ctx context.Context, actor *model.User, a *model.Activity) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.Create")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	now := time.Now()
	a.Title = strings.TrimSpace(a.Title)
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedBy = actor.ID
	a.CreatedAt, a.UpdatedAt = now, now
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.checkProfessor(ctx, tx, a.AssignedProfessorID); err != nil {
			return err
		}
		return uc.activities.Create(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("activity_id", a.ID).Str("actor_id", actor.ID).Msg("activity created")
	return a, nil
}

// Update compares notifiable fields against the locked row before saving and
// dispatches change notifications after commit.
func (uc *activityUC) Update(ctx context.Context, actor *model.User, id string, p ActivityPatch) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.Update")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		updated *model.Activity
		change  model.ActivityChange
	)
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		prev := *a
		applyActivityPatch(a, p)
		if err := a.Validate(); err != nil {
			return err
		}
		if p.AssignedProfessorID != nil {
			if err := uc.checkProfessor(ctx, tx, a.AssignedProfessorID); err != nil {
				return err
			}
		}
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		change = a.DiffNotifiable(&prev)
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifyChange(ctx, updated, change)
	return updated, nil
}

func (uc *activityUC) Delete(ctx context.Context, actor *model.User, id string) error {
	defer logging.TraceDuration(uc.log, "ActivityUC.Delete")()
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return uc.activities.Delete(ctx, repository.NoTX, id)
}

func (uc *activityUC) ListEnrollments(ctx context.Context, actor *model.User, id string) ([]*model.ActivityEnrollmentView, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.ListEnrollments")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := uc.activities.FindByID(ctx, repository.NoTX, id); err != nil {
		return nil, err
	}
	return uc.enrollments.ListByActivity(ctx, repository.NoTX, id)
}

func (uc *activityUC) ListForParticipant(ctx context.Context, userID string, from, to *time.Time) ([]*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.ListForParticipant")()
	return uc.activities.ListByParticipant(ctx, repository.NoTX, userID, from, to)
}

func (uc *activityUC) ListForProfessor(ctx context.Context, actor *model.User) ([]*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.ListForProfessor")()
	if err := requireProfessor(actor); err != nil {
		return nil, err
	}
	return uc.activities.ListByProfessor(ctx, repository.NoTX, actor.ID)
}

func (uc *activityUC) ProfessorUpdate(ctx context.Context, actor *model.User, id string, p ProfessorPatch) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.ProfessorUpdate")()
	if err := requireProfessor(actor); err != nil {
		return nil, err
	}

	var (
		updated *model.Activity
		change  model.ActivityChange
	)
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !a.IsAssignedTo(actor.ID) {
			return domain.ErrNotAssignedProfessor
		}
		prev := *a
		if p.Notes != nil {
			a.Notes = *p.Notes
		}
		if p.Location != nil {
			a.Location = strings.TrimSpace(*p.Location)
		}
		if p.Status != nil {
			a.Status = *p.Status
		}
		a.UpdatedAt = time.Now()
		if err := a.Validate(); err != nil {
			return err
		}
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		change = a.DiffNotifiable(&prev)
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.notifyChange(ctx, updated, change)
	return updated, nil
}

// MarkAttendance flips attended flags and recounts attendance under the
// activity row lock.
func (uc *activityUC) MarkAttendance(ctx context.Context, actor *model.User, id string, attended, notAttended []string) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "ActivityUC.MarkAttendance")()
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	var out *model.Activity
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !a.IsAssignedTo(actor.ID) {
			return domain.ErrNotAssignedProfessor
		}
		if len(attended) > 0 {
			if _, err := uc.enrollments.SetAttended(ctx, tx, a.ID, uniqueStrings(attended), true); err != nil {
				return err
			}
		}
		if len(notAttended) > 0 {
			if _, err := uc.enrollments.SetAttended(ctx, tx, a.ID, uniqueStrings(notAttended), false); err != nil {
				return err
			}
		}
		count, err := uc.enrollments.CountAttended(ctx, tx, a.ID)
		if err != nil {
			return err
		}
		a.RecountAttendance(count)
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// notifyChange is best effort; a failed dispatch never fails the save.
func (uc *activityUC) notifyChange(ctx context.Context, a *model.Activity, change model.ActivityChange) {
	if uc.notifier == nil || !change.Any() {
		return
	}
	if _, err := uc.notifier.NotifyActivityChange(ctx, a, change); err != nil {
		logging.With(ctx, uc.log).Error().Err(err).Str("activity_id", a.ID).Msg("activity change notification failed")
	}
}

// checkProfessor verifies that an assigned user holds a role that can be
// responsible for an activity.
func (uc *activityUC) checkProfessor(ctx context.Context, tx repository.Tx, professorID *string) error {
	if professorID == nil {
		return nil
	}
	u, err := uc.users.FindByID(ctx, tx, *professorID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.NewValidationError("assigned_professor", "validation.professor_role")
	}
	if err != nil {
		return err
	}
	if !u.Profile.Role.CanBeAssignedToActivity() {
		return model.NewValidationError("assigned_professor", "validation.professor_role")
	}
	return nil
}

func applyActivityPatch(a *model.Activity, p ActivityPatch) {
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Location != nil {
		a.Location = strings.TrimSpace(*p.Location)
	}
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.Capacity != nil {
		a.Capacity = *p.Capacity
	}
	if p.AvailableSpots != nil {
		a.AvailableSpots = *p.AvailableSpots
	}
	if p.Instructor != nil {
		a.Instructor = *p.Instructor
	}
	if p.Visibility != nil {
		a.Visibility = *p.Visibility
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Tags != nil {
		a.Tags = p.Tags
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.AssignedProfessorID != nil {
		if *p.AssignedProfessorID == "" {
			a.AssignedProfessorID = nil
		} else {
			id := *p.AssignedProfessorID
			a.AssignedProfessorID = &id
		}
	}
	a.UpdatedAt = time.Now()
}

func requireProfessor(actor *model.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	switch actor.Profile.Role {
	case model.RoleProfessor:
		return nil
	case model.RoleAdmin, model.RoleBeneficiary:
		return domain.ErrForbidden
	}
	return domain.ErrForbidden
}
