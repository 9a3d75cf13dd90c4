package web

import (
	"net/http"
	"strings"

	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/domain/ports/repository"
)

func (s *Server) listTournaments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.tournaments.List(r.Context(), repository.TournamentFilter{
		Sport:  strings.TrimSpace(q.Get("sport")),
		Status: model.TournamentStatus(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]tournamentResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTournamentResponse(t, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTournament(w http.ResponseWriter, r *http.Request) {
	d, err := s.tournaments.Get(r.Context(), s.param(r, "id"), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTournamentResponse(d.Tournament, d.Enrollment))
}

func (s *Server) createTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.tournaments.Create(r.Context(), userFrom(r.Context()), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTournamentResponse(t, nil))
}

func (s *Server) updateTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentPatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.tournaments.Update(r.Context(), userFrom(r.Context()), s.param(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTournamentResponse(t, nil))
}

func (s *Server) deleteTournament(w http.ResponseWriter, r *http.Request) {
	if err := s.tournaments.Delete(r.Context(), userFrom(r.Context()), s.param(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) enrollTournament(w http.ResponseWriter, r *http.Request) {
	res, err := s.tournaments.Enroll(r.Context(), userFrom(r.Context()).ID, s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, key := http.StatusCreated, "tournament.enrolled"
	if res.Reactivated {
		status, key = http.StatusOK, "tournament.reactivated"
	}
	writeJSON(w, status, tournamentEnrollResponse{
		Detail:     s.tr.T(key),
		Tournament: toTournamentResponse(res.Tournament, res.Enrollment),
		Enrollment: toTournamentEnrollmentResponse(res.Enrollment),
	})
}

func (s *Server) unenrollTournament(w http.ResponseWriter, r *http.Request) {
	t, err := s.tournaments.Unenroll(r.Context(), userFrom(r.Context()).ID, s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tournamentEnrollResponse{
		Detail:     s.tr.T("tournament.unenrolled"),
		Tournament: toTournamentResponse(t, nil),
	})
}

func (s *Server) tournamentEnrollments(w http.ResponseWriter, r *http.Request) {
	views, err := s.tournaments.ListEnrollments(r.Context(), userFrom(r.Context()), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]*tournamentEnrollmentResponse, 0, len(views))
	for _, v := range views {
		e := toTournamentEnrollmentResponse(&v.TournamentEnrollment)
		u := toUserResponse(&v.User)
		e.User = &u
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) setTournamentEnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	var req enrollmentStatusRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Status.Valid() {
		s.writeError(w, r, model.NewValidationError("status", "validation.invalid_choice"))
		return
	}
	e, err := s.tournaments.SetEnrollmentStatus(r.Context(), userFrom(r.Context()), s.param(r, "id"), s.param(r, "enrollmentId"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTournamentEnrollmentResponse(e))
}
