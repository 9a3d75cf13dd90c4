//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing/fstest"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/adapter"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/infra/i18n"
	red "cadi-backend/internal/infra/redis"
)

// =============================
// Adapters
// =============================

// ---- Mock Mailer ----

type MockMailer struct {
	mu   sync.Mutex
	Sent []adapter.EmailMessage

	SendFunc func(ctx context.Context, msg adapter.EmailMessage) (adapter.DeliveryOutcome, *adapter.DeliveryError)
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Name() string { return "mock" }

func (m *MockMailer) Send(ctx context.Context, msg adapter.EmailMessage) (adapter.DeliveryOutcome, *adapter.DeliveryError) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return adapter.DeliveryOutcome{Provider: "mock", MessageID: uuid.NewString(), StatusCode: 202}, nil
}

func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User

	CreateFunc   func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}}
}

// Seed stores users directly.
func (r *MockUserRepo) Seed(users ...*model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		cp := *u
		r.byID[u.ID] = &cp
	}
}

func (r *MockUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username })
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return email != "" && u.Email == email })
}

func (r *MockUserRepo) list(match func(*model.User) bool) []*model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *MockUserRepo) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return r.list(func(u *model.User) bool { return set[u.ID] }), nil
}

func (r *MockUserRepo) ListByRole(ctx context.Context, tx repository.Tx, role model.Role) ([]*model.User, error) {
	return r.list(func(u *model.User) bool { return u.Profile.Role == role }), nil
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	return r.list(func(*model.User) bool { return true }), nil
}

// ---- Mock PreferenceRepository ----

type MockPreferenceRepo struct {
	mu   sync.Mutex
	data map[string]*model.NotificationPreference

	UpsertFunc func(ctx context.Context, tx repository.Tx, p *model.NotificationPreference) error
}

var _ repository.PreferenceRepository = (*MockPreferenceRepo)(nil)

func NewMockPreferenceRepo() *MockPreferenceRepo {
	return &MockPreferenceRepo{data: map[string]*model.NotificationPreference{}}
}

func (r *MockPreferenceRepo) Get(ctx context.Context, tx repository.Tx, userID string) (*model.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPreferenceRepo) GetMany(ctx context.Context, tx repository.Tx, userIDs []string) (map[string]*model.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]*model.NotificationPreference{}
	for _, id := range userIDs {
		if p, ok := r.data[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *MockPreferenceRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.NotificationPreference) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.UserID] = &cp
	return nil
}

// ---- Mock ActivityRepository ----

type MockActivityRepo struct {
	mu   sync.Mutex
	data map[string]*model.Activity

	// Locks counts FindBy*ForUpdate calls.
	Locks int

	UpdateFunc func(ctx context.Context, tx repository.Tx, a *model.Activity) error
}

var _ repository.ActivityRepository = (*MockActivityRepo)(nil)

func NewMockActivityRepo() *MockActivityRepo {
	return &MockActivityRepo{data: map[string]*model.Activity{}}
}

func (r *MockActivityRepo) Seed(a *model.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.data[a.ID] = &cp
}

func (r *MockActivityRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[a.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *a
	r.data[a.ID] = &cp
	return nil
}

func (r *MockActivityRepo) Update(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	r.data[a.ID] = &cp
	return nil
}

func (r *MockActivityRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MockActivityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.data[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivityRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	r.mu.Lock()
	r.Locks++
	r.mu.Unlock()
	return r.FindByID(ctx, tx, id)
}

func (r *MockActivityRepo) FindByCheckinTokenForUpdate(ctx context.Context, tx repository.Tx, token string) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Locks++
	for _, a := range r.data {
		if a.CheckinToken != nil && *a.CheckinToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivityRepo) List(ctx context.Context, tx repository.Tx, f repository.ActivityFilter) ([]*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Activity
	for _, a := range r.data {
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *MockActivityRepo) ListByProfessor(ctx context.Context, tx repository.Tx, professorID string) ([]*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Activity
	for _, a := range r.data {
		if a.IsAssignedTo(professorID) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockActivityRepo) ListByParticipant(ctx context.Context, tx repository.Tx, userID string, from, to *time.Time) ([]*model.Activity, error) {
	return nil, nil
}

// ---- Mock ActivityEnrollmentRepository ----

type MockActivityEnrollmentRepo struct {
	mu   sync.Mutex
	data map[string]*model.ActivityEnrollment // activityID|userID
}

var _ repository.ActivityEnrollmentRepository = (*MockActivityEnrollmentRepo)(nil)

func NewMockActivityEnrollmentRepo() *MockActivityEnrollmentRepo {
	return &MockActivityEnrollmentRepo{data: map[string]*model.ActivityEnrollment{}}
}

func enrollmentKey(activityID, userID string) string { return activityID + "|" + userID }

func (r *MockActivityEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, activityID, userID string) (*model.ActivityEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.data[enrollmentKey(activityID, userID)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivityEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.ActivityEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := enrollmentKey(e.ActivityID, e.UserID)
	if _, ok := r.data[k]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *e
	r.data[k] = &cp
	return nil
}

func (r *MockActivityEnrollmentRepo) Delete(ctx context.Context, tx repository.Tx, activityID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := enrollmentKey(activityID, userID)
	if _, ok := r.data[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, k)
	return nil
}

func (r *MockActivityEnrollmentRepo) SetAttended(ctx context.Context, tx repository.Tx, activityID string, userIDs []string, attended bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, uid := range userIDs {
		if e, ok := r.data[enrollmentKey(activityID, uid)]; ok {
			e.Attended = attended
			n++
		}
	}
	return n, nil
}

func (r *MockActivityEnrollmentRepo) CountAttended(ctx context.Context, tx repository.Tx, activityID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.data {
		if e.ActivityID == activityID && e.Attended {
			n++
		}
	}
	return n, nil
}

func (r *MockActivityEnrollmentRepo) ListByActivity(ctx context.Context, tx repository.Tx, activityID string) ([]*model.ActivityEnrollmentView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ActivityEnrollmentView
	for _, e := range r.data {
		if e.ActivityID == activityID {
			out = append(out, &model.ActivityEnrollmentView{ActivityEnrollment: *e})
		}
	}
	return out, nil
}

func (r *MockActivityEnrollmentRepo) ListUserIDs(ctx context.Context, tx repository.Tx, activityID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.data {
		if e.ActivityID == activityID {
			out = append(out, e.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Count returns the number of enrollment rows for an activity.
func (r *MockActivityEnrollmentRepo) Count(activityID string) int {
	ids, _ := r.ListUserIDs(context.Background(), nil, activityID)
	return len(ids)
}

// ---- Mock TournamentRepository ----

type MockTournamentRepo struct {
	mu    sync.Mutex
	data  map[string]*model.Tournament
	Locks int
}

var _ repository.TournamentRepository = (*MockTournamentRepo)(nil)

func NewMockTournamentRepo() *MockTournamentRepo {
	return &MockTournamentRepo{data: map[string]*model.Tournament{}}
}

func (r *MockTournamentRepo) Seed(t *model.Tournament) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.data[t.ID] = &cp
}

func (r *MockTournamentRepo) Create(ctx context.Context, tx repository.Tx, t *model.Tournament) error {
	r.Seed(t)
	return nil
}

func (r *MockTournamentRepo) Update(ctx context.Context, tx repository.Tx, t *model.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.data[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := *t
	cp.CurrentTeams = old.CurrentTeams
	r.data[t.ID] = &cp
	return nil
}

func (r *MockTournamentRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MockTournamentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.data[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockTournamentRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Tournament, error) {
	r.mu.Lock()
	r.Locks++
	r.mu.Unlock()
	return r.FindByID(ctx, tx, id)
}

func (r *MockTournamentRepo) List(ctx context.Context, tx repository.Tx, f repository.TournamentFilter) ([]*model.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Tournament
	for _, t := range r.data {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockTournamentRepo) SetCurrentTeams(ctx context.Context, tx repository.Tx, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.CurrentTeams = n
	return nil
}

// ---- Mock TournamentEnrollmentRepository ----

type MockTournamentEnrollmentRepo struct {
	mu   sync.Mutex
	data map[string]*model.TournamentEnrollment // by id
}

var _ repository.TournamentEnrollmentRepository = (*MockTournamentEnrollmentRepo)(nil)

func NewMockTournamentEnrollmentRepo() *MockTournamentEnrollmentRepo {
	return &MockTournamentEnrollmentRepo{data: map[string]*model.TournamentEnrollment{}}
}

func (r *MockTournamentEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, tournamentID, userID string) (*model.TournamentEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.data {
		if e.TournamentID == tournamentID && e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockTournamentEnrollmentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TournamentEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.data[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockTournamentEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.TournamentEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.TournamentID == e.TournamentID && existing.UserID == e.UserID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *e
	r.data[e.ID] = &cp
	return nil
}

func (r *MockTournamentEnrollmentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, e *model.TournamentEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = e.Status
	existing.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *MockTournamentEnrollmentRepo) CountActive(ctx context.Context, tx repository.Tx, tournamentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.data {
		if e.TournamentID == tournamentID && e.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (r *MockTournamentEnrollmentRepo) ListByTournament(ctx context.Context, tx repository.Tx, tournamentID string) ([]*model.TournamentEnrollmentView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.TournamentEnrollmentView
	for _, e := range r.data {
		if e.TournamentID == tournamentID {
			out = append(out, &model.TournamentEnrollmentView{TournamentEnrollment: *e})
		}
	}
	return out, nil
}

// Rows returns the number of stored rows for a tournament.
func (r *MockTournamentEnrollmentRepo) Rows(tournamentID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.data {
		if e.TournamentID == tournamentID {
			n++
		}
	}
	return n
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu   sync.Mutex
	data map[string]*model.Notification

	CreateFunc func(ctx context.Context, tx repository.Tx, n *model.Notification) error
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{data: map[string]*model.Notification{}}
}

func (r *MockNotificationRepo) Create(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, n)
	}
	// notifications.title is VARCHAR(255)
	if utf8.RuneCountInString(n.Title) > model.NotificationTitleMaxLen {
		return domain.ErrOperationFailed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.data[n.ID] = &cp
	return nil
}

func (r *MockNotificationRepo) UpdateDelivery(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[n.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Status = n.Status
	existing.SentAt = n.SentAt
	existing.ScheduledFor = n.ScheduledFor
	return nil
}

func (r *MockNotificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.data[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockNotificationRepo) ExistsRecent(ctx context.Context, tx repository.Tx, userID, activityID, title string, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.data {
		if n.UserID == userID && n.ActivityID != nil && *n.ActivityID == activityID && n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockNotificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	out := r.Filter(func(n *model.Notification) bool { return n.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockNotificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.data[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	n.MarkRead(at)
	return nil
}

func (r *MockNotificationRepo) MarkAllRead(ctx context.Context, tx repository.Tx, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.data {
		if n.UserID == userID && n.MarkRead(at) {
			count++
		}
	}
	return count, nil
}

func (r *MockNotificationRepo) ListDueScheduled(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Notification, error) {
	return r.Filter(func(n *model.Notification) bool {
		return n.Status == model.NotificationScheduled && n.ScheduledFor != nil && !n.ScheduledFor.After(now)
	}), nil
}

func (r *MockNotificationRepo) CampaignCounters(ctx context.Context, tx repository.Tx, campaignID string) (model.CampaignCounters, error) {
	var c model.CampaignCounters
	users := map[string]bool{}
	for _, n := range r.Filter(func(n *model.Notification) bool { return n.CampaignID != nil && *n.CampaignID == campaignID }) {
		users[n.UserID] = true
		if n.Status != model.NotificationSent {
			continue
		}
		switch n.Channel {
		case model.ChannelApp:
			c.AppSent++
		case model.ChannelEmail:
			c.EmailsSent++
		}
	}
	c.TotalRecipients = len(users)
	return c, nil
}

// Filter returns copies ordered by ID, which follows creation order.
func (r *MockNotificationRepo) Filter(match func(*model.Notification) bool) []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.data {
		if match(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- Mock NotificationLogRepository ----

type MockNotificationLogRepo struct {
	mu      sync.Mutex
	Entries []model.DeliveryLog
}

var _ repository.NotificationLogRepository = (*MockNotificationLogRepo)(nil)

func NewMockNotificationLogRepo() *MockNotificationLogRepo {
	return &MockNotificationLogRepo{}
}

func (r *MockNotificationLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, *l)
	return nil
}

func (r *MockNotificationLogRepo) ListByNotifications(ctx context.Context, tx repository.Tx, ids []string) (map[string][]model.DeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string][]model.DeliveryLog{}
	for _, e := range r.Entries {
		if want[e.NotificationID] {
			out[e.NotificationID] = append(out[e.NotificationID], e)
		}
	}
	return out, nil
}

// ---- Mock CampaignRepository ----

type MockCampaignRepo struct {
	mu   sync.Mutex
	data map[string]*model.Campaign
}

var _ repository.CampaignRepository = (*MockCampaignRepo)(nil)

func NewMockCampaignRepo() *MockCampaignRepo {
	return &MockCampaignRepo{data: map[string]*model.Campaign{}}
}

func (r *MockCampaignRepo) Create(ctx context.Context, tx repository.Tx, c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.data[c.ID] = &cp
	return nil
}

func (r *MockCampaignRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.data[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockCampaignRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Campaign
	for _, c := range r.data {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockCampaignRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Campaign
	for _, c := range r.data {
		if c.Due(now) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockCampaignRepo) SaveCounters(ctx context.Context, tx repository.Tx, id string, c model.CampaignCounters, dispatchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	existing.TotalRecipients = c.TotalRecipients
	existing.AppSent = c.AppSent
	existing.EmailsSent = c.EmailsSent
	at := dispatchedAt
	existing.DispatchedAt = &at
	return nil
}

// ---- Mock ProjectRepository ----

type MockProjectRepo struct {
	mu          sync.Mutex
	data        map[string]*model.Project
	enrollments *MockProjectEnrollmentRepo
}

var _ repository.ProjectRepository = (*MockProjectRepo)(nil)

func NewMockProjectRepo(enrollments *MockProjectEnrollmentRepo) *MockProjectRepo {
	return &MockProjectRepo{data: map[string]*model.Project{}, enrollments: enrollments}
}

func (r *MockProjectRepo) Create(ctx context.Context, tx repository.Tx, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockProjectRepo) Update(ctx context.Context, tx repository.Tx, p *model.Project) error {
	return r.Create(ctx, tx, p)
}

func (r *MockProjectRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Project, error) {
	r.mu.Lock()
	p, ok := r.data[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Confirmed = r.enrollments.confirmed(id)
	return &cp, nil
}

func (r *MockProjectRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Project, error) {
	return r.FindByID(ctx, tx, id)
}

func (r *MockProjectRepo) List(ctx context.Context, tx repository.Tx, typ model.ProjectType) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Project
	for _, p := range r.data {
		if typ == "" || p.Type == typ {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type MockProjectEnrollmentRepo struct {
	mu   sync.Mutex
	data []*model.ProjectEnrollment
}

var _ repository.ProjectEnrollmentRepository = (*MockProjectEnrollmentRepo)(nil)

func (r *MockProjectEnrollmentRepo) Create(ctx context.Context, tx repository.Tx, e *model.ProjectEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.ProjectID == e.ProjectID && existing.Email == e.Email {
			return domain.ErrAlreadyExists
		}
	}
	cp := *e
	r.data = append(r.data, &cp)
	return nil
}

func (r *MockProjectEnrollmentRepo) ListByProject(ctx context.Context, tx repository.Tx, projectID string) ([]*model.ProjectEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ProjectEnrollment
	for _, e := range r.data {
		if e.ProjectID == projectID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockProjectEnrollmentRepo) confirmed(projectID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.data {
		if e.ProjectID == projectID && e.Status == model.ProjectEnrollmentConfirmed {
			n++
		}
	}
	return n
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	mu    sync.Mutex
	Calls int

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx serializes callbacks, which is what the row locks give us in Postgres.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker (implements redis.Locker port) ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

var _ red.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", red.ErrLockHeld
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return domain.ErrInvalidState
}

// Hold pretends another process owns the key.
func (l *MockLocker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = "someone-else"
}

// ---- Mock Limiter ----

type MockLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

var _ red.Limiter = (*MockLimiter)(nil)

func NewMockLimiter() *MockLimiter { return &MockLimiter{counts: map[string]int{}} }

func (l *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Test Translator

func newTestTranslator() *i18n.Translator {
	testFS := fstest.MapFS{
		"locales/es.yaml": {
			Data: []byte(`
notification.activity_changed.title: "Actualización de actividad: %s"
notification.activity_changed.body: "La actividad \"%s\" ha cambiado. %s"
notification.change.start: "Nueva fecha de inicio: %s."
notification.change.location: "Nuevo lugar: %s."
notification.change.status: "Nuevo estado: %s."
mail.subject: "[CADI] %s"
`),
		},
	}
	translator, _ := i18n.NewTranslator(testFS, "es")
	return translator
}

// --- Fixtures

func newTestUser(username string, role model.Role) *model.User {
	u, _ := model.NewUser("", username, username+"@uni.edu")
	u.Profile.Role = role
	return u
}

func newTestActivity(capacity int, professorID string) *model.Activity {
	start := time.Now().Add(24 * time.Hour)
	a, _ := model.NewActivity("Yoga", model.CategoryWellbeing, start, start.Add(time.Hour), capacity, "admin")
	if professorID != "" {
		id := professorID
		a.AssignedProfessorID = &id
	}
	return a
}
