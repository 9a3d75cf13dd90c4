//go:build !integration

package web

import (
	"context"
	"io"
	"sync"
	"time"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/usecase"

	"github.com/rs/zerolog"
)

// --- Mock use cases ---
//
// Each mock embeds its interface; calling a method the test did not stub
// panics, which the Recover middleware turns into a 500.

type mockUserUC struct {
	usecase.UserUseCase
	mu    sync.Mutex
	users map[string]*model.User

	AuthenticateFunc func(ctx context.Context, identifier, password string) (*model.User, error)
	RegisterFunc     func(ctx context.Context, in usecase.RegisterInput) (*model.User, error)
	ChangeRoleFunc   func(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error)
}

func newMockUserUC(users ...*model.User) *mockUserUC {
	m := &mockUserUC{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserUC) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserUC) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	return m.AuthenticateFunc(ctx, identifier, password)
}

func (m *mockUserUC) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, error) {
	return m.RegisterFunc(ctx, in)
}

func (m *mockUserUC) ChangeRole(ctx context.Context, actor *model.User, userID string, role model.Role) (*model.User, error) {
	return m.ChangeRoleFunc(ctx, actor, userID, role)
}

type mockActivityUC struct {
	usecase.ActivityUseCase
	ListFunc   func(ctx context.Context, f repository.ActivityFilter) ([]*model.Activity, error)
	GetFunc    func(ctx context.Context, id string) (*model.Activity, error)
	CreateFunc func(ctx context.Context, actor *model.User, a *model.Activity) (*model.Activity, error)
	UpdateFunc func(ctx context.Context, actor *model.User, id string, p usecase.ActivityPatch) (*model.Activity, error)
}

func (m *mockActivityUC) List(ctx context.Context, f repository.ActivityFilter) ([]*model.Activity, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockActivityUC) Get(ctx context.Context, id string) (*model.Activity, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockActivityUC) Create(ctx context.Context, actor *model.User, a *model.Activity) (*model.Activity, error) {
	return m.CreateFunc(ctx, actor, a)
}

func (m *mockActivityUC) Update(ctx context.Context, actor *model.User, id string, p usecase.ActivityPatch) (*model.Activity, error) {
	return m.UpdateFunc(ctx, actor, id, p)
}

type mockEnrollmentUC struct {
	EnrollFunc   func(ctx context.Context, userID, activityID string) (*usecase.EnrollResult, error)
	UnenrollFunc func(ctx context.Context, userID, activityID string) (*model.Activity, error)
}

func (m *mockEnrollmentUC) Enroll(ctx context.Context, userID, activityID string) (*usecase.EnrollResult, error) {
	return m.EnrollFunc(ctx, userID, activityID)
}

func (m *mockEnrollmentUC) Unenroll(ctx context.Context, userID, activityID string) (*model.Activity, error) {
	return m.UnenrollFunc(ctx, userID, activityID)
}

type mockCheckinUC struct {
	GenerateFunc func(ctx context.Context, actor *model.User, activityID string) (*usecase.CheckinTicket, error)
	CheckinFunc  func(ctx context.Context, userID, token string) (*usecase.CheckinResult, error)
}

func (m *mockCheckinUC) Generate(ctx context.Context, actor *model.User, activityID string) (*usecase.CheckinTicket, error) {
	return m.GenerateFunc(ctx, actor, activityID)
}

func (m *mockCheckinUC) Checkin(ctx context.Context, userID, token string) (*usecase.CheckinResult, error) {
	return m.CheckinFunc(ctx, userID, token)
}

type mockTournamentUC struct {
	usecase.TournamentUseCase
	GetFunc             func(ctx context.Context, id, userID string) (*usecase.TournamentDetail, error)
	EnrollFunc          func(ctx context.Context, userID, id string) (*usecase.TournamentEnrollResult, error)
	ListEnrollmentsFunc func(ctx context.Context, actor *model.User, id string) ([]*model.TournamentEnrollmentView, error)
	UpdateFunc          func(ctx context.Context, actor *model.User, id string, p usecase.TournamentPatch) (*model.Tournament, error)
}

func (m *mockTournamentUC) Get(ctx context.Context, id, userID string) (*usecase.TournamentDetail, error) {
	return m.GetFunc(ctx, id, userID)
}

func (m *mockTournamentUC) Enroll(ctx context.Context, userID, id string) (*usecase.TournamentEnrollResult, error) {
	return m.EnrollFunc(ctx, userID, id)
}

func (m *mockTournamentUC) ListEnrollments(ctx context.Context, actor *model.User, id string) ([]*model.TournamentEnrollmentView, error) {
	return m.ListEnrollmentsFunc(ctx, actor, id)
}

func (m *mockTournamentUC) Update(ctx context.Context, actor *model.User, id string, p usecase.TournamentPatch) (*model.Tournament, error) {
	return m.UpdateFunc(ctx, actor, id, p)
}

type mockProjectUC struct {
	usecase.ProjectUseCase
	EnrollFunc func(ctx context.Context, projectID string, in usecase.ProjectEnrollInput) (*model.ProjectEnrollment, error)
}

func (m *mockProjectUC) Enroll(ctx context.Context, projectID string, in usecase.ProjectEnrollInput) (*model.ProjectEnrollment, error) {
	return m.EnrollFunc(ctx, projectID, in)
}

type mockNotificationUC struct {
	usecase.NotificationUseCase
	mu    sync.Mutex
	prefs map[string]*model.NotificationPreference
}

func (m *mockNotificationUC) GetPreferences(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return model.DefaultPreference(userID), nil
}

func (m *mockNotificationUC) UpdatePreferences(ctx context.Context, p *model.NotificationPreference) (*model.NotificationPreference, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		m.prefs = map[string]*model.NotificationPreference{}
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.prefs[p.UserID] = &cp
	return p, nil
}

// --- fixtures ---

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestUser(id, username string, role model.Role) *model.User {
	u, _ := model.NewUser(id, username, username+"@uni.edu")
	u.Profile.Role = role
	return u
}

func newTestActivity(id string, capacity, spots int) *model.Activity {
	start := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	return &model.Activity{
		ID:             id,
		Title:          "Yoga",
		Category:       model.CategoryWellbeing,
		Start:          start,
		End:            start.Add(time.Hour),
		Capacity:       capacity,
		AvailableSpots: spots,
		Visibility:     model.VisibilityPublic,
		Status:         model.ActivityStatusActive,
		Tags:           []string{},
	}
}
