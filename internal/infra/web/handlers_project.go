package web

import (
	"errors"
	"net/http"
	"strings"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/usecase"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	typ := model.ProjectType(strings.ToUpper(r.URL.Query().Get("type")))
	list, err := s.projects.List(r.Context(), typ)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]projectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.projects.Create(r.Context(), userFrom(r.Context()), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

// enrollProject accepts anonymous sign-ups; a logged-in caller is linked to
// the enrollment.
func (s *Server) enrollProject(w http.ResponseWriter, r *http.Request) {
	var req projectEnrollRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := usecase.ProjectEnrollInput{
		FullName: req.FullName,
		Email:    string(req.Email),
		Phone:    req.Phone,
	}
	if u := userFrom(r.Context()); u != nil {
		in.UserID = &u.ID
	}

	e, err := s.projects.Enroll(r.Context(), s.param(r, "id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			s.writeDetail(w, http.StatusBadRequest, "project.already_enrolled")
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, projectEnrollmentResponse{
		ID:             e.ID,
		ProjectID:      e.ProjectID,
		FullName:       e.FullName,
		Email:          e.Email,
		Phone:          e.Phone,
		Status:         e.Status,
		EnrollmentDate: e.EnrollmentDate,
	})
}
