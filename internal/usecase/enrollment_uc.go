package usecase

import (
	"context"
	"errors"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ EnrollmentUseCase = (*enrollmentUC)(nil)

// EnrollResult reports whether a new enrollment row was written.
type EnrollResult struct {
	Activity *model.Activity
	Created  bool
}

// EnrollmentUseCase manages capacity-bound activity enrollment. Both
// operations hold the activity row lock for their whole read-then-write.
type EnrollmentUseCase interface {
	Enroll(ctx context.Context, userID, activityID string) (*EnrollResult, error)
	Unenroll(ctx context.Context, userID, activityID string) (*model.Activity, error)
}

type enrollmentUC struct {
	activities  repository.ActivityRepository
	enrollments repository.ActivityEnrollmentRepository
	tm          repository.TransactionManager
	log         *zerolog.Logger
}

func NewEnrollmentUseCase(
	activities repository.ActivityRepository,
	enrollments repository.ActivityEnrollmentRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *enrollmentUC {
	return &enrollmentUC{
		activities:  activities,
		enrollments: enrollments,
		tm:          tm,
		log:         logger,
	}
}

// Enroll is idempotent: an existing enrollment is reported with Created=false.
func (uc *enrollmentUC) Enroll(ctx context.Context, userID, activityID string) (*EnrollResult, error) {
	defer logging.TraceDuration(uc.log, "EnrollmentUC.Enroll")()

	var res *EnrollResult
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if _, err := uc.enrollments.Find(ctx, tx, activityID, userID); err == nil {
			res = &EnrollResult{Activity: a, Created: false}
			return nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if a.Status != model.ActivityStatusActive {
			return domain.ErrActivityClosed
		}
		if err := a.TakeSpot(); err != nil {
			return err
		}
		if err := uc.enrollments.Create(ctx, tx, model.NewActivityEnrollment(activityID, userID)); err != nil {
			return err
		}
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		res = &EnrollResult{Activity: a, Created: true}
		return nil
	})

	switch {
	case err == nil && res.Created:
		metrics.IncEnrollment("activity", "enroll", "created")
	case err == nil:
		metrics.IncEnrollment("activity", "enroll", "existing")
	case errors.Is(err, domain.ErrActivityFull):
		metrics.IncEnrollment("activity", "enroll", "full")
	default:
		metrics.IncEnrollment("activity", "enroll", "error")
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Unenroll returns the spot without clamping to capacity; an overflow is
// logged and counted.
func (uc *enrollmentUC) Unenroll(ctx context.Context, userID, activityID string) (*model.Activity, error) {
	defer logging.TraceDuration(uc.log, "EnrollmentUC.Unenroll")()

	var out *model.Activity
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if _, err := uc.enrollments.Find(ctx, tx, activityID, userID); errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotEnrolled
		} else if err != nil {
			return err
		}
		if err := uc.enrollments.Delete(ctx, tx, activityID, userID); err != nil {
			return err
		}
		a.ReleaseSpot()
		if a.ExceedsCapacity() {
			metrics.IncCapacityOverflow()
			logging.With(ctx, uc.log).Warn().
				Str("activity_id", a.ID).
				Int("available_spots", a.AvailableSpots).
				Int("capacity", a.Capacity).
				Msg("available spots exceed capacity after unenroll")
		}
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		metrics.IncEnrollment("activity", "unenroll", "error")
		return nil, err
	}
	metrics.IncEnrollment("activity", "unenroll", "ok")
	return out, nil
}
