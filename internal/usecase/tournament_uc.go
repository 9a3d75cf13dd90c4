package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ TournamentUseCase = (*tournamentUC)(nil)

// TournamentPatch carries admin edits. Nil means unchanged.
type TournamentPatch struct {
	Name             *string
	Sport            *string
	Format           *string
	Description      *string
	Location         *string
	InscriptionStart **time.Time
	InscriptionEnd   **time.Time
	Start            *time.Time
	End              *time.Time
	Visibility       *model.Visibility
	Status           *model.TournamentStatus
	MaxTeams         *int
	Fixtures         json.RawMessage
}

// TournamentDetail is a tournament plus the caller's enrollment, if any.
type TournamentDetail struct {
	Tournament *model.Tournament
	Enrollment *model.TournamentEnrollment
}

type TournamentEnrollResult struct {
	Tournament  *model.Tournament
	Enrollment  *model.TournamentEnrollment
	Reactivated bool
}

// TournamentUseCase keeps current_teams equal to the count of active
// enrollments. Every mutation locks the tournament row first.
type TournamentUseCase interface {
	List(ctx context.Context, f repository.TournamentFilter) ([]*model.Tournament, error)
	Get(ctx context.Context, id, userID string) (*TournamentDetail, error)
	Create(ctx context.Context, actor *model.User, t *model.Tournament) (*model.Tournament, error)
	Update(ctx context.Context, actor *model.User, id string, p TournamentPatch) (*model.Tournament, error)
	Delete(ctx context.Context, actor *model.User, id string) error

	Enroll(ctx context.Context, userID, id string) (*TournamentEnrollResult, error)
	Unenroll(ctx context.Context, userID, id string) (*model.Tournament, error)
	ListEnrollments(ctx context.Context, actor *model.User, id string) ([]*model.TournamentEnrollmentView, error)
	SetEnrollmentStatus(ctx context.Context, actor *model.User, id, enrollmentID string, status model.TournamentEnrollmentStatus) (*model.TournamentEnrollment, error)
}

type tournamentUC struct {
	tournaments repository.TournamentRepository
	enrollments repository.TournamentEnrollmentRepository
	tm          repository.TransactionManager
	loc         *time.Location
	now         func() time.Time
	log         *zerolog.Logger
}

func NewTournamentUseCase(
	tournaments repository.TournamentRepository,
	enrollments repository.TournamentEnrollmentRepository,
	tm repository.TransactionManager,
	loc *time.Location,
	logger *zerolog.Logger,
) *tournamentUC {
	if loc == nil {
		loc = time.UTC
	}
	return &tournamentUC{
		tournaments: tournaments,
		enrollments: enrollments,
		tm:          tm,
		loc:         loc,
		now:         time.Now,
		log:         logger,
	}
}

// WithClock replaces the time source used for the inscription window.
func (uc *tournamentUC) WithClock(now func() time.Time) *tournamentUC {
	uc.now = now
	return uc
}

func (uc *tournamentUC) List(ctx context.Context, f repository.TournamentFilter) ([]*model.Tournament, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.List")()
	return uc.tournaments.List(ctx, repository.NoTX, f)
}

func (uc *tournamentUC) Get(ctx context.Context, id, userID string) (*TournamentDetail, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.Get")()
	t, err := uc.tournaments.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	detail := &TournamentDetail{Tournament: t}
	if userID == "" {
		return detail, nil
	}
	e, err := uc.enrollments.Find(ctx, repository.NoTX, id, userID)
	switch {
	case err == nil:
		detail.Enrollment = e
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return detail, nil
}

func (uc *tournamentUC) Create(ctx context.Context, actor *model.User, t *model.Tournament) (*model.Tournament, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.Create")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := time.Now()
	t.Name = strings.TrimSpace(t.Name)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Sport = strings.TrimSpace(t.Sport)
	t.CreatedBy = actor.ID
	t.CreatedAt, t.UpdatedAt = now, now
	t.CurrentTeams = 0
	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tournaments.Create(ctx, repository.NoTX, t); err != nil {
		return nil, err
	}
	uc.log.Info().Str("tournament_id", t.ID).Str("actor_id", actor.ID).Msg("tournament created")
	return t, nil
}

func (uc *tournamentUC) Update(ctx context.Context, actor *model.User, id string, p TournamentPatch) (*model.Tournament, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.Update")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var out *model.Tournament
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := uc.tournaments.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		applyTournamentPatch(t, p)
		if err := t.Validate(); err != nil {
			return err
		}
		if err := uc.tournaments.Update(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete locks the row so no enrollment can slip in while it goes away.
func (uc *tournamentUC) Delete(ctx context.Context, actor *model.User, id string) error {
	defer logging.TraceDuration(uc.log, "TournamentUC.Delete")()
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := uc.tournaments.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		return uc.tournaments.Delete(ctx, tx, id)
	})
}

func (uc *tournamentUC) Enroll(ctx context.Context, userID, id string) (*TournamentEnrollResult, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.Enroll")()

	today := model.DateOnly(uc.now(), uc.loc)
	var res *TournamentEnrollResult
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := uc.tournaments.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := t.CheckInscriptionOpen(today); err != nil {
			return err
		}

		existing, err := uc.enrollments.Find(ctx, tx, id, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil && existing.Status.Active() {
			return domain.ErrAlreadyEnrolled
		}

		active, err := uc.enrollments.CountActive(ctx, tx, id)
		if err != nil {
			return err
		}
		if !t.HasRoomFor(active) {
			return domain.ErrTournamentFull
		}

		res = &TournamentEnrollResult{}
		if existing != nil {
			existing.Reactivate()
			if err := uc.enrollments.UpdateStatus(ctx, tx, existing); err != nil {
				return err
			}
			res.Enrollment, res.Reactivated = existing, true
		} else {
			e := model.NewTournamentEnrollment(id, userID)
			if err := uc.enrollments.Create(ctx, tx, e); err != nil {
				return err
			}
			res.Enrollment = e
		}

		if err := uc.recount(ctx, tx, t); err != nil {
			return err
		}
		res.Tournament = t
		return nil
	})

	switch {
	case err == nil && res.Reactivated:
		metrics.IncEnrollment("tournament", "enroll", "reactivated")
	case err == nil:
		metrics.IncEnrollment("tournament", "enroll", "created")
	case errors.Is(err, domain.ErrTournamentFull):
		metrics.IncEnrollment("tournament", "enroll", "full")
	case errors.Is(err, domain.ErrInvalidState):
		metrics.IncEnrollment("tournament", "enroll", "rejected")
	default:
		metrics.IncEnrollment("tournament", "enroll", "error")
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *tournamentUC) Unenroll(ctx context.Context, userID, id string) (*model.Tournament, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.Unenroll")()

	var out *model.Tournament
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := uc.tournaments.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		e, err := uc.enrollments.Find(ctx, tx, id, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTournamentNotEnrolled
		}
		if err != nil {
			return err
		}
		if err := e.Cancel(); err != nil {
			return err
		}
		if err := uc.enrollments.UpdateStatus(ctx, tx, e); err != nil {
			return err
		}
		if err := uc.recount(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		metrics.IncEnrollment("tournament", "unenroll", "error")
		return nil, err
	}
	metrics.IncEnrollment("tournament", "unenroll", "ok")
	return out, nil
}

func (uc *tournamentUC) ListEnrollments(ctx context.Context, actor *model.User, id string) ([]*model.TournamentEnrollmentView, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.ListEnrollments")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := uc.tournaments.FindByID(ctx, repository.NoTX, id); err != nil {
		return nil, err
	}
	return uc.enrollments.ListByTournament(ctx, repository.NoTX, id)
}

// SetEnrollmentStatus is the admin path; it skips the inscription window but
// still respects max_teams when activating.
func (uc *tournamentUC) SetEnrollmentStatus(ctx context.Context, actor *model.User, id, enrollmentID string, status model.TournamentEnrollmentStatus) (*model.TournamentEnrollment, error) {
	defer logging.TraceDuration(uc.log, "TournamentUC.SetEnrollmentStatus")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, model.NewValidationError("status", "validation.invalid_choice")
	}

	var out *model.TournamentEnrollment
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := uc.tournaments.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		e, err := uc.enrollments.FindByID(ctx, tx, enrollmentID)
		if err != nil {
			return err
		}
		if e.TournamentID != id {
			return domain.ErrNotFound
		}
		if !e.Status.Active() && status.Active() {
			active, err := uc.enrollments.CountActive(ctx, tx, id)
			if err != nil {
				return err
			}
			if !t.HasRoomFor(active) {
				return domain.ErrTournamentFull
			}
		}
		e.Status = status
		e.UpdatedAt = time.Now()
		if err := uc.enrollments.UpdateStatus(ctx, tx, e); err != nil {
			return err
		}
		if err := uc.recount(ctx, tx, t); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recount derives current_teams from the active rows and writes it back.
func (uc *tournamentUC) recount(ctx context.Context, tx repository.Tx, t *model.Tournament) error {
	n, err := uc.enrollments.CountActive(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	if err := uc.tournaments.SetCurrentTeams(ctx, tx, t.ID, n); err != nil {
		return err
	}
	t.CurrentTeams = n
	return nil
}

func applyTournamentPatch(t *model.Tournament, p TournamentPatch) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Sport != nil {
		t.Sport = strings.TrimSpace(*p.Sport)
	}
	if p.Format != nil {
		t.Format = *p.Format
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.InscriptionStart != nil {
		t.InscriptionStart = *p.InscriptionStart
	}
	if p.InscriptionEnd != nil {
		t.InscriptionEnd = *p.InscriptionEnd
	}
	if p.Start != nil {
		t.Start = *p.Start
	}
	if p.End != nil {
		t.End = *p.End
	}
	if p.Visibility != nil {
		t.Visibility = *p.Visibility
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.MaxTeams != nil {
		t.MaxTeams = *p.MaxTeams
	}
	if p.Fixtures != nil {
		t.Fixtures = p.Fixtures
	}
	t.UpdatedAt = time.Now()
}
