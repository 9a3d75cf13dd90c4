package web

import (
	"net/http"
	"strings"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
	"cadi-backend/internal/usecase"
)

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.ActivityFilter{
		Category:   model.ActivityCategory(strings.ToUpper(q.Get("category"))),
		Status:     model.ActivityStatus(q.Get("status")),
		Search:     strings.TrimSpace(q.Get("search")),
		OnlyPublic: !userFrom(r.Context()).IsAdmin(),
	}
	list, err := s.activities.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityList(list))
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	a, err := s.activities.Get(r.Context(), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !canView(userFrom(r.Context()), a) {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

// canView applies the listing visibility rule to a single activity.
func canView(u *model.User, a *model.Activity) bool {
	if a.Visibility != model.VisibilityPrivate || u.IsAdmin() {
		return true
	}
	return u != nil && a.IsAssignedTo(u.ID)
}

func (s *Server) createActivity(w http.ResponseWriter, r *http.Request) {
	var req activityCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.activities.Create(r.Context(), userFrom(r.Context()), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(a))
}

func (s *Server) updateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityPatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.activities.Update(r.Context(), userFrom(r.Context()), s.param(r, "id"), req.toPatch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.activities.Delete(r.Context(), userFrom(r.Context()), s.param(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) activityEnrollments(w http.ResponseWriter, r *http.Request) {
	views, err := s.activities.ListEnrollments(r.Context(), userFrom(r.Context()), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]activityEnrollmentResponse, 0, len(views))
	for _, v := range views {
		u := v.User
		out = append(out, activityEnrollmentResponse{
			ID:         v.ID,
			User:       toUserResponse(&u),
			Attended:   v.Attended,
			EnrolledAt: v.EnrolledAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) enrollActivity(w http.ResponseWriter, r *http.Request) {
	res, err := s.enrollments.Enroll(r.Context(), userFrom(r.Context()).ID, s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, key := http.StatusOK, "activity.already_enrolled"
	if res.Created {
		status, key = http.StatusCreated, "activity.enrolled"
	}
	writeJSON(w, status, enrollResponse{Detail: s.tr.T(key), Activity: toActivityResponse(res.Activity)})
}

func (s *Server) unenrollActivity(w http.ResponseWriter, r *http.Request) {
	a, err := s.enrollments.Unenroll(r.Context(), userFrom(r.Context()).ID, s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollResponse{Detail: s.tr.T("activity.unenrolled"), Activity: toActivityResponse(a)})
}

// ===== check-in =====

func (s *Server) generateCheckin(w http.ResponseWriter, r *http.Request) {
	t, err := s.checkins.Generate(r.Context(), userFrom(r.Context()), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkinTicketResponse{
		Token:      t.Token,
		ExpiresAt:  t.ExpiresAt,
		CheckinURL: t.CheckinURL,
	})
}

func (s *Server) checkin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.checkins.Checkin(r.Context(), userFrom(r.Context()).ID, req.Token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := "checkin.marked"
	if res.AlreadyMarked {
		key = "checkin.already_marked"
	}
	writeJSON(w, http.StatusOK, checkinResultResponse{
		Detail:          s.tr.T(key),
		ActivityID:      res.ActivityID,
		Attended:        res.Attended,
		AlreadyMarked:   res.AlreadyMarked,
		ActualAttendees: res.ActualAttendees,
		AvailableSpots:  res.AvailableSpots,
	})
}

// ===== professor =====

func (s *Server) professorActivities(w http.ResponseWriter, r *http.Request) {
	list, err := s.activities.ListForProfessor(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityList(list))
}

func (s *Server) professorUpdate(w http.ResponseWriter, r *http.Request) {
	var req professorPatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.applyProfessorPatch(w, r, usecase.ProfessorPatch{Notes: req.Notes, Location: req.Location, Status: req.Status})
}

func (s *Server) professorNotes(w http.ResponseWriter, r *http.Request) {
	var req professorPatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.applyProfessorPatch(w, r, usecase.ProfessorPatch{Notes: req.Notes})
}

func (s *Server) applyProfessorPatch(w http.ResponseWriter, r *http.Request, p usecase.ProfessorPatch) {
	a, err := s.activities.ProfessorUpdate(r.Context(), userFrom(r.Context()), s.param(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

func (s *Server) professorAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.activities.MarkAttendance(r.Context(), userFrom(r.Context()), s.param(r, "id"), req.Attended, req.NotAttended)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(a))
}
