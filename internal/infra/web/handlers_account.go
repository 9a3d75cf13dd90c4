package web

import (
	"errors"
	"net/http"
	"strings"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/infra/logging"
	"cadi-backend/internal/usecase"
)

type okErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type okErrorsResponse struct {
	OK     bool              `json:"ok"`
	Errors map[string]string `json:"errors"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *model.User) error {
	if _, err := s.auth.Mint(w, u.ID); err != nil {
		return err
	}
	s.auth.EnsureCSRF(w, r)
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, okErrorResponse{Error: s.tr.T("validation.invalid_json")})
		return
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, okErrorResponse{Error: s.tr.T("auth.missing_credentials")})
		return
	}

	u, err := s.users.Authenticate(r.Context(), identifier, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, okErrorResponse{Error: s.tr.T("auth.invalid_credentials")})
			return
		}
		s.writeError(w, r, err)
		return
	}
	if err := s.startSession(w, r, u); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := toUserResponse(u)
	writeJSON(w, http.StatusOK, sessionResponse{OK: true, User: &resp})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeRegisterError(w, r, err)
		return
	}
	in := usecase.RegisterInput{
		Username:  req.Username,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Email != nil {
		in.Email = string(*req.Email)
	}

	u, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeRegisterError(w, r, err)
		return
	}
	if err := s.startSession(w, r, u); err != nil {
		s.writeError(w, r, err)
		return
	}
	l := logging.With(r.Context(), s.log)
	l.Info().Str("new_user_id", u.ID).Msg("user registered")

	resp := toUserResponse(u)
	writeJSON(w, http.StatusOK, sessionResponse{OK: true, User: &resp})
}

// writeRegisterError keeps the {ok:false, errors:{...}} envelope of the
// registration form.
func (s *Server) writeRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	fields, ok := s.fieldErrors(err)
	switch {
	case ok:
	case errors.Is(err, domain.ErrPasswordMismatch):
		fields = map[string]string{"password2": s.tr.T("auth.password_mismatch")}
	case errors.Is(err, domain.ErrAlreadyExists):
		fields = map[string]string{"username": s.tr.T("auth.username_taken")}
	default:
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, okErrorsResponse{Errors: fields})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if userFrom(r.Context()) == nil {
		writeJSON(w, http.StatusUnauthorized, okErrorResponse{Error: s.tr.T("error.unauthorized")})
		return
	}
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, okErrorResponse{OK: true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, sessionResponse{OK: false})
		return
	}
	resp := toUserResponse(u)
	writeJSON(w, http.StatusOK, sessionResponse{OK: true, User: &resp})
}

func (s *Server) listProfessors(w http.ResponseWriter, r *http.Request) {
	profs, err := s.users.ListProfessors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(profs))
	for _, p := range profs {
		out = append(out, toUserResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, r, model.NewValidationError("role", "validation.invalid_choice"))
		return
	}
	u, err := s.users.ChangeRole(r.Context(), userFrom(r.Context()), s.param(r, "id"), role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// userActivities feeds the participant calendar.
func (s *Server) userActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDateParam("from", q.Get("from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDateParam("to", q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.activities.ListForParticipant(r.Context(), userFrom(r.Context()).ID, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityList(list))
}
