package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cadi-backend/internal/config"
	"cadi-backend/internal/infra/i18n"
	"cadi-backend/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// UseCases groups the business operations the REST surface exposes.
type UseCases struct {
	Users         usecase.UserUseCase
	Activities    usecase.ActivityUseCase
	Enrollments   usecase.EnrollmentUseCase
	Checkins      usecase.CheckinUseCase
	Tournaments   usecase.TournamentUseCase
	Projects      usecase.ProjectUseCase
	Notifications usecase.NotificationUseCase
	Campaigns     usecase.CampaignUseCase
}

type Server struct {
	users         usecase.UserUseCase
	activities    usecase.ActivityUseCase
	enrollments   usecase.EnrollmentUseCase
	checkins      usecase.CheckinUseCase
	tournaments   usecase.TournamentUseCase
	projects      usecase.ProjectUseCase
	notifications usecase.NotificationUseCase
	campaigns     usecase.CampaignUseCase

	auth    *AuthManager
	tr      *i18n.Translator
	v       *requestValidator
	timeout time.Duration
	log     *zerolog.Logger

	srv *http.Server
}

func NewServer(uc UseCases, auth *AuthManager, tr *i18n.Translator, timeout time.Duration, logger *zerolog.Logger) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		users:         uc.Users,
		activities:    uc.Activities,
		enrollments:   uc.Enrollments,
		checkins:      uc.Checkins,
		tournaments:   uc.Tournaments,
		projects:      uc.Projects,
		notifications: uc.Notifications,
		campaigns:     uc.Campaigns,
		auth:          auth,
		tr:            tr,
		v:             newRequestValidator(),
		timeout:       timeout,
		log:           logger,
	}
}

// Routes builds the REST router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID, RequestLog(s.log), Recover(s.log), Timeout(s.timeout), s.session)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeDetail(w, http.StatusNotFound, "error.not_found")
	})

	r.Route("/api", func(r chi.Router) {
		// CSRF exempt
		r.Post("/login/", s.handleLogin)
		r.Post("/register/", s.handleRegister)
		r.Post("/logout/", s.handleLogout)
		r.Get("/session/", s.handleSession)

		// public catalog
		r.Group(func(r chi.Router) {
			r.Use(s.csrf)

			r.Get("/actividades/", s.listActivities)
			r.Get("/actividades/{id}/", s.getActivity)
			r.Get("/proyectos/", s.listProjects)
			r.Get("/proyectos/{id}/", s.getProject)
			r.Post("/proyectos/{id}/enroll/", s.enrollProject)
		})

		// authenticated; requireAuth runs ahead of csrf
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.csrf)

			r.Get("/professors/", s.listProfessors)
			r.Patch("/users/{id}/role/", s.changeRole)
			r.Get("/user/activities", s.userActivities)

			r.Post("/actividades/", s.createActivity)
			r.Post("/actividades/checkin/", s.checkin)
			r.Get("/actividades/professor/list/", s.professorActivities)
			r.Patch("/actividades/{id}/", s.updateActivity)
			r.Delete("/actividades/{id}/", s.deleteActivity)
			r.Get("/actividades/{id}/enrollments/", s.activityEnrollments)
			r.Post("/actividades/{id}/enroll/", s.enrollActivity)
			r.Post("/actividades/{id}/unenroll/", s.unenrollActivity)
			r.Post("/actividades/{id}/generate-checkin/", s.generateCheckin)
			r.Patch("/actividades/{id}/professor-update/", s.professorUpdate)
			r.Patch("/actividades/{id}/professor/attendance/", s.professorAttendance)
			r.Patch("/actividades/{id}/professor/notes/", s.professorNotes)

			r.Get("/torneos/", s.listTournaments)
			r.Post("/torneos/", s.createTournament)
			r.Get("/torneos/{id}/", s.getTournament)
			r.Patch("/torneos/{id}/", s.updateTournament)
			r.Delete("/torneos/{id}/", s.deleteTournament)
			r.Post("/torneos/{id}/enroll/", s.enrollTournament)
			r.Post("/torneos/{id}/unenroll/", s.unenrollTournament)
			r.Get("/torneos/{id}/enrollments/", s.tournamentEnrollments)
			r.Patch("/torneos/{id}/enrollments/{enrollmentId}/", s.setTournamentEnrollmentStatus)

			r.Post("/proyectos/", s.createProject)

			for _, base := range []string{"/notifications", "/notificaciones"} {
				r.Get(base+"/", s.listNotifications)
			}
			r.Post("/notifications/read-all/", s.readAllNotifications)
			r.Post("/notifications/{id}/read/", s.readNotification)
			r.Get("/notification-preferences/", s.getPreferences)
			r.Put("/notification-preferences/", s.updatePreferences)
			r.Patch("/notification-preferences/", s.updatePreferences)

			r.Get("/campaigns/", s.listCampaigns)
			r.Post("/campaigns/", s.createCampaign)
			r.Get("/campaigns/{id}/", s.getCampaign)
			r.Post("/campaigns/{id}/dispatch/", s.dispatchCampaign)
		})
	})
	return r
}

// Start blocks serving HTTP on cfg.Addr until Shutdown.
func (s *Server) Start(cfg config.HTTPConfig) error {
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
	s.log.Info().Str("addr", cfg.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
