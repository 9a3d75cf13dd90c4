package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/adapter"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/i18n"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

const defaultInboxLimit = 50

// NotificationSettings tunes dispatch behaviour.
type NotificationSettings struct {
	DedupWindow          time.Duration
	SendEmailImmediately bool
	Location             *time.Location
	ReleaseBatch         int
}

func (s NotificationSettings) withDefaults() NotificationSettings {
	if s.DedupWindow <= 0 {
		s.DedupWindow = 10 * time.Minute
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.ReleaseBatch <= 0 {
		s.ReleaseBatch = 200
	}
	return s
}

type NotificationUseCase interface {
	// NotifyActivityChange fans out one notification per recipient and
	// enabled channel. It returns how many rows were created.
	NotifyActivityChange(ctx context.Context, a *model.Activity, change model.ActivityChange) (int, error)
	ListInbox(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	GetPreferences(ctx context.Context, userID string) (*model.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, p *model.NotificationPreference) (*model.NotificationPreference, error)
	// ReleaseScheduled delivers scheduled notifications whose time has come.
	ReleaseScheduled(ctx context.Context) (int, error)
}

type notificationUC struct {
	notifs      repository.NotificationRepository
	logs        repository.NotificationLogRepository
	users       repository.UserRepository
	prefs       repository.PreferenceRepository
	enrollments repository.ActivityEnrollmentRepository
	tm          repository.TransactionManager
	delivery    *emailDelivery
	tr          *i18n.Translator
	settings    NotificationSettings
	log         *zerolog.Logger
}

func NewNotificationUseCase(
	notifs repository.NotificationRepository,
	logs repository.NotificationLogRepository,
	users repository.UserRepository,
	prefs repository.PreferenceRepository,
	enrollments repository.ActivityEnrollmentRepository,
	tm repository.TransactionManager,
	mailer adapter.Mailer,
	tr *i18n.Translator,
	settings NotificationSettings,
	logger *zerolog.Logger,
) *notificationUC {
	return &notificationUC{
		notifs:      notifs,
		logs:        logs,
		users:       users,
		prefs:       prefs,
		enrollments: enrollments,
		tm:          tm,
		delivery:    newEmailDelivery(mailer, notifs, logs, tr, logger),
		tr:          tr,
		settings:    settings.withDefaults(),
		log:         logger,
	}
}

func (n *notificationUC) NotifyActivityChange(ctx context.Context, a *model.Activity, change model.ActivityChange) (int, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.NotifyActivityChange")()
	if !change.Any() {
		return 0, nil
	}

	recipients, err := n.enrollments.ListUserIDs(ctx, repository.NoTX, a.ID)
	if err != nil {
		return 0, err
	}
	if a.AssignedProfessorID != nil {
		recipients = append(recipients, *a.AssignedProfessorID)
	}
	recipients = uniqueStrings(recipients)
	if len(recipients) == 0 {
		return 0, nil
	}

	users, err := n.usersByID(ctx, repository.NoTX, recipients)
	if err != nil {
		return 0, err
	}
	prefs, err := n.prefs.GetMany(ctx, repository.NoTX, recipients)
	if err != nil {
		return 0, err
	}

	title := model.NotificationTitle(n.tr.T("notification.activity_changed.title", a.Title))
	body := n.tr.T("notification.activity_changed.body", a.Title, n.describeChange(a, change))
	now := time.Now()
	since := now.Add(-n.settings.DedupWindow)
	log := logging.With(ctx, n.log)

	created := 0
	for _, uid := range recipients {
		user, ok := users[uid]
		if !ok {
			continue
		}
		dup, err := n.notifs.ExistsRecent(ctx, repository.NoTX, uid, a.ID, title, since)
		if err != nil {
			log.Error().Err(err).Str("user_id", uid).Msg("dedup lookup failed")
			continue
		}
		if dup {
			metrics.IncNotificationDeduped()
			continue
		}

		pref := prefs[uid]
		if pref == nil {
			pref = model.DefaultPreference(uid)
		}
		for _, ch := range pref.Channels() {
			note := model.NewNotification(uid, ch, title, body)
			activityID := a.ID
			note.ActivityID = &activityID
			note.Metadata["activity_id"] = a.ID
			note.Metadata["changes"] = changedFields(change)

			switch ch {
			case model.ChannelApp:
				note.MarkSent(now)
			case model.ChannelEmail:
				if until, quiet := pref.QuietUntil(now, n.settings.Location); quiet {
					note.ScheduleFor(until)
				}
			}
			if err := n.notifs.Create(ctx, repository.NoTX, note); err != nil {
				log.Error().Err(err).Str("user_id", uid).Str("channel", string(ch)).Msg("failed to create notification")
				continue
			}
			created++

			if ch == model.ChannelEmail && note.Status == model.NotificationPending && n.settings.SendEmailImmediately {
				n.delivery.deliver(ctx, repository.NoTX, note, user)
				continue
			}
			metrics.IncNotification(string(ch), string(note.Status))
		}
	}

	log.Info().Str("activity_id", a.ID).Int("recipients", len(recipients)).Int("created", created).Msg("activity change notified")
	return created, nil
}

func (n *notificationUC) describeChange(a *model.Activity, c model.ActivityChange) string {
	var parts []string
	if c.Start {
		parts = append(parts, n.tr.T("notification.change.start", a.Start.In(n.settings.Location).Format("02/01/2006 15:04")))
	}
	if c.Location {
		parts = append(parts, n.tr.T("notification.change.location", a.Location))
	}
	if c.Status {
		parts = append(parts, n.tr.T("notification.change.status", string(a.Status)))
	}
	return strings.Join(parts, " ")
}

func changedFields(c model.ActivityChange) []string {
	out := []string{}
	if c.Start {
		out = append(out, "start")
	}
	if c.Location {
		out = append(out, "location")
	}
	if c.Status {
		out = append(out, "status")
	}
	return out
}

func (n *notificationUC) ListInbox(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.ListInbox")()
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	items, err := n.notifs.ListByUser(ctx, repository.NoTX, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	logs, err := n.logs.ListByNotifications(ctx, repository.NoTX, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.DeliveryLogs = logs[it.ID]
	}
	return items, nil
}

func (n *notificationUC) MarkRead(ctx context.Context, userID, id string) error {
	defer logging.TraceDuration(n.log, "NotificationUC.MarkRead")()
	return n.notifs.MarkRead(ctx, repository.NoTX, userID, id, time.Now())
}

func (n *notificationUC) MarkAllRead(ctx context.Context, userID string) (int, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.MarkAllRead")()
	return n.notifs.MarkAllRead(ctx, repository.NoTX, userID, time.Now())
}

// GetPreferences falls back to the defaults when the user has no row.
func (n *notificationUC) GetPreferences(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	p, err := n.prefs.Get(ctx, repository.NoTX, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.DefaultPreference(userID), nil
	}
	return p, err
}

func (n *notificationUC) UpdatePreferences(ctx context.Context, p *model.NotificationPreference) (*model.NotificationPreference, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.UpdatePreferences")()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := n.prefs.Upsert(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (n *notificationUC) ReleaseScheduled(ctx context.Context) (int, error) {
	defer logging.TraceDuration(n.log, "NotificationUC.ReleaseScheduled")()

	// Due rows are claimed and committed before any mail is sent.
	var (
		released int
		emails   []*model.Notification
		users    map[string]*model.User
	)
	err := n.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		released, emails = 0, emails[:0]
		now := time.Now()
		due, err := n.notifs.ListDueScheduled(ctx, tx, now, n.settings.ReleaseBatch)
		if err != nil || len(due) == 0 {
			return err
		}
		ids := make([]string, 0, len(due))
		for _, d := range due {
			ids = append(ids, d.UserID)
		}
		if users, err = n.usersByID(ctx, tx, uniqueStrings(ids)); err != nil {
			return err
		}
		for _, note := range due {
			switch note.Channel {
			case model.ChannelApp:
				note.MarkSent(now)
			case model.ChannelEmail:
				note.MarkPending()
				emails = append(emails, note)
			}
			if err := n.notifs.UpdateDelivery(ctx, tx, note); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, note := range emails {
		n.delivery.deliver(ctx, repository.NoTX, note, users[note.UserID])
	}
	for i := 0; i < released-len(emails); i++ {
		metrics.IncNotification(string(model.ChannelApp), string(model.NotificationSent))
	}
	if released > 0 {
		n.log.Info().Int("released", released).Int("emails", len(emails)).Msg("scheduled notifications released")
	}
	return released, nil
}

func (n *notificationUC) usersByID(ctx context.Context, tx repository.Tx, ids []string) (map[string]*model.User, error) {
	list, err := n.users.ListByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.User, len(list))
	for _, u := range list {
		out[u.ID] = u
	}
	return out, nil
}

// emailDelivery sends one e-mail notification and records the attempt.
type emailDelivery struct {
	mailer adapter.Mailer
	notifs repository.NotificationRepository
	logs   repository.NotificationLogRepository
	tr     *i18n.Translator
	log    *zerolog.Logger
}

func newEmailDelivery(mailer adapter.Mailer, notifs repository.NotificationRepository, logs repository.NotificationLogRepository, tr *i18n.Translator, logger *zerolog.Logger) *emailDelivery {
	return &emailDelivery{mailer: mailer, notifs: notifs, logs: logs, tr: tr, log: logger}
}

// deliver never fails: the outcome lands on the notification row and in the
// delivery log.
func (d *emailDelivery) deliver(ctx context.Context, tx repository.Tx, n *model.Notification, to *model.User) {
	var (
		outcome adapter.DeliveryOutcome
		derr    *adapter.DeliveryError
	)
	if to == nil || to.Email == "" {
		derr = &adapter.DeliveryError{Provider: d.mailer.Name(), Reason: "recipient has no email address"}
	} else {
		outcome, derr = d.mailer.Send(ctx, adapter.EmailMessage{
			To:      to.Email,
			ToName:  to.FullName(),
			Subject: d.tr.T("mail.subject", n.Title),
			Text:    n.Body,
		})
	}

	log := logging.With(ctx, d.log)
	var entry *model.DeliveryLog
	if derr != nil {
		n.MarkFailed()
		entry = model.NewDeliveryLog(n.ID, model.ChannelEmail, model.DeliveryFailed, derr.Error())
		log.Warn().Err(derr).Str("notification_id", n.ID).Int("status_code", derr.StatusCode).Msg("email delivery failed")
	} else {
		n.MarkSent(time.Now())
		entry = model.NewDeliveryLog(n.ID, model.ChannelEmail, model.DeliverySent,
			fmt.Sprintf("%s message_id=%s status=%d", outcome.Provider, outcome.MessageID, outcome.StatusCode))
	}
	metrics.IncNotification(string(model.ChannelEmail), string(n.Status))

	if err := d.notifs.UpdateDelivery(ctx, tx, n); err != nil {
		log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to persist delivery status")
	}
	if err := d.logs.Save(ctx, tx, entry); err != nil {
		log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to write delivery log")
	}
	n.DeliveryLogs = append(n.DeliveryLogs, *entry)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
