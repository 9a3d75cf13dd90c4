package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/adapter"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/i18n"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"
	red "cadi-backend/internal/infra/redis"
	"cadi-backend/internal/infra/worker"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CampaignUseCase = (*campaignUC)(nil)

const campaignLockTTL = 5 * time.Minute

type CampaignUseCase interface {
	List(ctx context.Context, actor *model.User) ([]*model.Campaign, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Campaign, error)
	// Create stores the campaign and dispatches it right away unless it is
	// scheduled for later.
	Create(ctx context.Context, actor *model.User, c *model.Campaign) (*model.Campaign, error)
	Dispatch(ctx context.Context, actor *model.User, id string) (*model.Campaign, error)
	// DispatchDue sends every scheduled campaign whose time has come.
	DispatchDue(ctx context.Context) (int, error)
}

type campaignUC struct {
	campaigns repository.CampaignRepository
	notifs    repository.NotificationRepository
	users     repository.UserRepository
	prefs     repository.PreferenceRepository
	tm        repository.TransactionManager
	locker    red.Locker
	pool      *worker.Pool
	delivery  *emailDelivery
	settings  NotificationSettings
	log       *zerolog.Logger

	// wg tracks background e-mail fan-outs.
	wg sync.WaitGroup
}

func NewCampaignUseCase(
	campaigns repository.CampaignRepository,
	notifs repository.NotificationRepository,
	logs repository.NotificationLogRepository,
	users repository.UserRepository,
	prefs repository.PreferenceRepository,
	tm repository.TransactionManager,
	mailer adapter.Mailer,
	tr *i18n.Translator,
	locker red.Locker,
	pool *worker.Pool,
	settings NotificationSettings,
	logger *zerolog.Logger,
) *campaignUC {
	return &campaignUC{
		campaigns: campaigns,
		notifs:    notifs,
		users:     users,
		prefs:     prefs,
		tm:        tm,
		locker:    locker,
		pool:      pool,
		delivery:  newEmailDelivery(mailer, notifs, logs, tr, logger),
		settings:  settings.withDefaults(),
		log:       logger,
	}
}

// Wait blocks until queued e-mail fan-outs have finished.
func (uc *campaignUC) Wait() { uc.wg.Wait() }

func (uc *campaignUC) List(ctx context.Context, actor *model.User) ([]*model.Campaign, error) {
	defer logging.TraceDuration(uc.log, "CampaignUC.List")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.campaigns.List(ctx, repository.NoTX)
}

func (uc *campaignUC) Get(ctx context.Context, actor *model.User, id string) (*model.Campaign, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.campaigns.FindByID(ctx, repository.NoTX, id)
}

func (uc *campaignUC) Create(ctx context.Context, actor *model.User, c *model.Campaign) (*model.Campaign, error) {
	defer logging.TraceDuration(uc.log, "CampaignUC.Create")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	c.CreatedBy = actor.ID
	if c.ID == "" {
		c.ID = ulid.Make().String()
	}
	if c.SelectedUserIDs == nil {
		c.SelectedUserIDs = []string{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.campaigns.Create(ctx, repository.NoTX, c); err != nil {
		return nil, err
	}
	if c.ScheduleAt != nil && c.ScheduleAt.After(time.Now()) {
		uc.log.Info().Str("campaign_id", c.ID).Time("schedule_at", *c.ScheduleAt).Msg("campaign scheduled")
		return c, nil
	}
	return uc.dispatch(ctx, c.ID)
}

func (uc *campaignUC) Dispatch(ctx context.Context, actor *model.User, id string) (*model.Campaign, error) {
	defer logging.TraceDuration(uc.log, "CampaignUC.Dispatch")()
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return uc.dispatch(ctx, id)
}

func (uc *campaignUC) DispatchDue(ctx context.Context) (int, error) {
	defer logging.TraceDuration(uc.log, "CampaignUC.DispatchDue")()
	due, err := uc.campaigns.ListDue(ctx, repository.NoTX, time.Now())
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, c := range due {
		if _, err := uc.dispatch(ctx, c.ID); err != nil {
			if errors.Is(err, domain.ErrCampaignBusy) || errors.Is(err, domain.ErrCampaignAlreadyDispatched) {
				continue
			}
			uc.log.Error().Err(err).Str("campaign_id", c.ID).Msg("scheduled campaign dispatch failed")
			continue
		}
		sent++
	}
	return sent, nil
}

// dispatch holds a redis lock per campaign so a manual dispatch and the
// scheduler never double-send.
func (uc *campaignUC) dispatch(ctx context.Context, id string) (*model.Campaign, error) {
	key := red.CampaignLockKey(id)
	token, err := uc.locker.TryLock(ctx, key, campaignLockTTL)
	if errors.Is(err, red.ErrLockHeld) {
		return nil, domain.ErrCampaignBusy
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := uc.locker.Unlock(context.Background(), key, token); err != nil {
			uc.log.Warn().Err(err).Str("campaign_id", id).Msg("failed to release campaign lock")
		}
	}()

	c, err := uc.campaigns.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if c.DispatchedAt != nil {
		return nil, domain.ErrCampaignAlreadyDispatched
	}

	recipients, err := uc.recipients(ctx, c)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recipients))
	byID := make(map[string]*model.User, len(recipients))
	for _, u := range recipients {
		ids = append(ids, u.ID)
		byID[u.ID] = u
	}
	prefs, err := uc.prefs.GetMany(ctx, repository.NoTX, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var emails []*model.Notification
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		emails = emails[:0]
		for _, u := range recipients {
			pref := prefs[u.ID]
			if pref == nil {
				pref = model.DefaultPreference(u.ID)
			}
			for _, ch := range pref.Channels() {
				if !c.ChannelOption.Allows(ch) {
					continue
				}
				note := model.NewNotification(u.ID, ch, c.Name, c.Message)
				campaignID := c.ID
				note.CampaignID = &campaignID
				note.Metadata["campaign_id"] = c.ID
				note.Metadata["segment"] = string(c.Segment)
				if ch == model.ChannelApp {
					note.MarkSent(now)
				}
				if err := uc.notifs.Create(ctx, tx, note); err != nil {
					return err
				}
				if ch == model.ChannelEmail {
					emails = append(emails, note)
				} else {
					metrics.IncNotification(string(ch), string(note.Status))
				}
			}
		}
		counters, err := uc.notifs.CampaignCounters(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		return uc.campaigns.SaveCounters(ctx, tx, c.ID, counters, now)
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCampaignRecipients(string(c.Segment), len(recipients))
	logging.With(ctx, uc.log).Info().
		Str("campaign_id", c.ID).
		Int("recipients", len(recipients)).
		Int("emails", len(emails)).
		Msg("campaign dispatched")

	uc.sendEmails(ctx, c.ID, now, emails, byID)
	return uc.campaigns.FindByID(ctx, repository.NoTX, c.ID)
}

// sendEmails delivers synchronously when configured to; otherwise it feeds
// the worker pool from a background goroutine and refreshes the counters
// once every e-mail has been attempted.
func (uc *campaignUC) sendEmails(ctx context.Context, campaignID string, dispatchedAt time.Time, emails []*model.Notification, users map[string]*model.User) {
	if len(emails) == 0 {
		return
	}
	if uc.settings.SendEmailImmediately || uc.pool == nil {
		for _, n := range emails {
			uc.delivery.deliver(ctx, repository.NoTX, n, users[n.UserID])
		}
		uc.refreshCounters(ctx, campaignID, dispatchedAt)
		return
	}

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		bg := context.Background()
		var sent sync.WaitGroup
		for _, n := range emails {
			n, to := n, users[n.UserID]
			sent.Add(1)
			task := func(ctx context.Context) error {
				defer sent.Done()
				uc.delivery.deliver(ctx, repository.NoTX, n, to)
				return nil
			}
			if err := uc.pool.SubmitWait(bg, task); err != nil {
				sent.Done()
				uc.log.Warn().Err(err).Str("notification_id", n.ID).Msg("failed to queue campaign email")
			}
		}
		sent.Wait()
		uc.refreshCounters(bg, campaignID, dispatchedAt)
	}()
}

func (uc *campaignUC) refreshCounters(ctx context.Context, campaignID string, dispatchedAt time.Time) {
	counters, err := uc.notifs.CampaignCounters(ctx, repository.NoTX, campaignID)
	if err == nil {
		err = uc.campaigns.SaveCounters(ctx, repository.NoTX, campaignID, counters, dispatchedAt)
	}
	if err != nil {
		uc.log.Error().Err(err).Str("campaign_id", campaignID).Msg("failed to refresh campaign counters")
	}
}

func (uc *campaignUC) recipients(ctx context.Context, c *model.Campaign) ([]*model.User, error) {
	var (
		users []*model.User
		err   error
	)
	switch c.Segment {
	case model.SegmentAll:
		users, err = uc.users.List(ctx, repository.NoTX, 0, 0)
	case model.SegmentStudents:
		users, err = uc.users.ListByRole(ctx, repository.NoTX, model.RoleBeneficiary)
	case model.SegmentProfessors:
		users, err = uc.users.ListByRole(ctx, repository.NoTX, model.RoleProfessor)
	case model.SegmentSelected:
		users, err = uc.users.ListByIDs(ctx, repository.NoTX, uniqueStrings(c.SelectedUserIDs))
	default:
		return nil, model.NewValidationError("segment", "validation.invalid_choice")
	}
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}
