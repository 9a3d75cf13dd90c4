package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"
	red "cadi-backend/internal/infra/redis"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CheckinUseCase = (*checkinUC)(nil)

const checkinTokenBytes = 32

// CheckinSettings configures token issuance and attempt limits.
type CheckinSettings struct {
	TokenTTL    time.Duration
	RateLimit   int
	RateWindow  time.Duration
	FrontendURL string
}

type CheckinTicket struct {
	ActivityID string
	Token      string
	ExpiresAt  time.Time
	CheckinURL string
}

type CheckinResult struct {
	ActivityID      string
	Attended        bool
	AlreadyMarked   bool
	ActualAttendees int
	AvailableSpots  int
}

type CheckinUseCase interface {
	// Generate issues a fresh token for the activity, replacing any previous one.
	Generate(ctx context.Context, actor *model.User, activityID string) (*CheckinTicket, error)
	// Checkin marks attendance. Repeating it is a no-op with AlreadyMarked set.
	Checkin(ctx context.Context, userID, token string) (*CheckinResult, error)
}

type checkinUC struct {
	activities  repository.ActivityRepository
	enrollments repository.ActivityEnrollmentRepository
	tm          repository.TransactionManager
	limiter     red.Limiter
	settings    CheckinSettings
	now         func() time.Time
	log         *zerolog.Logger
}

func NewCheckinUseCase(
	activities repository.ActivityRepository,
	enrollments repository.ActivityEnrollmentRepository,
	tm repository.TransactionManager,
	limiter red.Limiter,
	settings CheckinSettings,
	logger *zerolog.Logger,
) *checkinUC {
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = 10 * time.Minute
	}
	return &checkinUC{
		activities:  activities,
		enrollments: enrollments,
		tm:          tm,
		limiter:     limiter,
		settings:    settings,
		now:         time.Now,
		log:         logger,
	}
}

// WithClock replaces the time source. Tests use it to move past token expiry.
func (uc *checkinUC) WithClock(now func() time.Time) *checkinUC {
	uc.now = now
	return uc
}

func (uc *checkinUC) Generate(ctx context.Context, actor *model.User, activityID string) (*CheckinTicket, error) {
	defer logging.TraceDuration(uc.log, "CheckinUC.Generate")()
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := newCheckinToken()
	if err != nil {
		return nil, err
	}

	var ticket *CheckinTicket
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByIDForUpdate(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if !a.IsAssignedTo(actor.ID) {
			return domain.ErrNotAssignedProfessor
		}
		a.IssueCheckinToken(token, uc.now(), uc.settings.TokenTTL)
		if err := uc.activities.Update(ctx, tx, a); err != nil {
			return err
		}
		ticket = &CheckinTicket{
			ActivityID: a.ID,
			Token:      token,
			ExpiresAt:  *a.CheckinExpiresAt,
			CheckinURL: uc.checkinURL(token),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, uc.log).Info().Str("activity_id", activityID).Time("expires_at", ticket.ExpiresAt).Msg("check-in token issued")
	return ticket, nil
}

func (uc *checkinUC) Checkin(ctx context.Context, userID, token string) (*CheckinResult, error) {
	defer logging.TraceDuration(uc.log, "CheckinUC.Checkin")()

	token = strings.TrimSpace(token)
	if token == "" {
		metrics.IncCheckin("missing_token")
		return nil, domain.ErrTokenMissing
	}
	if uc.limiter != nil && uc.settings.RateLimit > 0 {
		ok, err := uc.limiter.Allow(ctx, red.CheckinKey(userID), uc.settings.RateLimit, uc.settings.RateWindow)
		if err != nil {
			uc.log.Warn().Err(err).Msg("check-in rate limiter unavailable")
		} else if !ok {
			metrics.IncRateLimitTriggered("checkin")
			return nil, domain.ErrRateLimited
		}
	}

	var res *CheckinResult
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := uc.activities.FindByCheckinTokenForUpdate(ctx, tx, token)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		switch a.CheckinStateAt(uc.now()) {
		case model.CheckinTokenIssued:
		case model.CheckinTokenExpired:
			return domain.ErrTokenExpired
		case model.CheckinNoToken:
			return domain.ErrTokenNotFound
		}

		e, err := uc.enrollments.Find(ctx, tx, a.ID, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			e = model.NewActivityEnrollment(a.ID, userID)
			e.Attended = true
			if err := uc.enrollments.Create(ctx, tx, e); err != nil {
				return err
			}
		case err != nil:
			return err
		case e.Attended:
			res = &CheckinResult{
				ActivityID:      a.ID,
				Attended:        true,
				AlreadyMarked:   true,
				ActualAttendees: a.ActualAttendees,
				AvailableSpots:  a.AvailableSpots,
			}
			return nil
		default:
			if _, err := uc.enrollments.SetAttended(ctx, tx, a.ID, []string{userID}, true); err != nil {
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
		res = &CheckinResult{
			ActivityID:      a.ID,
			Attended:        true,
			ActualAttendees: a.ActualAttendees,
			AvailableSpots:  a.AvailableSpots,
		}
		return nil
	})

	switch {
	case err == nil && res.AlreadyMarked:
		metrics.IncCheckin("already_marked")
	case err == nil:
		metrics.IncCheckin("marked")
	case errors.Is(err, domain.ErrTokenExpired):
		metrics.IncCheckin("expired")
	case errors.Is(err, domain.ErrTokenNotFound):
		metrics.IncCheckin("unknown_token")
	default:
		metrics.IncCheckin("error")
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (uc *checkinUC) checkinURL(token string) string {
	base := strings.TrimRight(uc.settings.FrontendURL, "/")
	return base + "/checkin?token=" + url.QueryEscape(token)
}

func newCheckinToken() (string, error) {
	buf := make([]byte, checkinTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
