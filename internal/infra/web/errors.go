package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"cadi-backend/internal/domain"
	"cadi-backend/internal/domain/model"
	"cadi-backend/internal/infra/logging"

	"github.com/go-playground/validator/v10"
)

// detailKeys maps specific business errors to their message keys. Order
// matters: the first match wins, so specific errors come before categories.
var detailKeys = []struct {
	err error
	key string
}{
	{domain.ErrInvalidCredentials, "auth.invalid_credentials"},
	{domain.ErrNotAssignedProfessor, "activity.not_assigned"},
	{domain.ErrAdminRequired, "admin.required"},
	{domain.ErrActivityFull, "activity.full"},
	{domain.ErrNotEnrolled, "activity.not_enrolled"},
	{domain.ErrActivityClosed, "activity.closed"},
	{domain.ErrAlreadyEnrolled, "tournament.already_enrolled"},
	{domain.ErrTokenMissing, "checkin.token_required"},
	{domain.ErrTokenExpired, "checkin.token_expired"},
	{domain.ErrTokenNotFound, "checkin.token_invalid"},
	{domain.ErrTournamentClosed, "tournament.closed"},
	{domain.ErrInscriptionNotOpen, "tournament.inscription_not_open"},
	{domain.ErrInscriptionEnded, "tournament.inscription_ended"},
	{domain.ErrTournamentFull, "tournament.full"},
	{domain.ErrEnrollmentCancelled, "tournament.enrollment_cancelled"},
	{domain.ErrTournamentNotEnrolled, "tournament.not_enrolled"},
	{domain.ErrProjectFull, "project.full"},
	{domain.ErrProjectClosed, "project.closed"},
	{domain.ErrCampaignAlreadyDispatched, "campaign.already_dispatched"},
	{domain.ErrCampaignBusy, "campaign.busy"},
	{domain.ErrPasswordMismatch, "auth.password_mismatch"},
	{domain.ErrRateLimited, "error.rate_limited"},
	{domain.ErrUnauthorized, "error.unauthorized"},
	{domain.ErrForbidden, "error.forbidden"},
	{domain.ErrNotFound, "error.not_found"},
	{domain.ErrAlreadyExists, "error.already_exists"},
	{domain.ErrInvalidState, "error.invalid_state"},
	{domain.ErrInvalidArgument, "error.bad_request"},
	{domain.ErrValidation, "error.validation"},
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func detailKey(err error) string {
	for _, d := range detailKeys {
		if errors.Is(err, d.err) {
			return d.key
		}
	}
	return "error.internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type errorsResponse struct {
	Errors map[string]string `json:"errors"`
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, key string, args ...any) {
	writeJSON(w, status, detailResponse{Detail: s.tr.T(key, args...)})
}

// fieldErrors translates model and request validation failures into a
// field -> message map.
func (s *Server) fieldErrors(err error) (map[string]string, bool) {
	var verr *model.ValidationError
	if errors.As(err, &verr) && !verr.Empty() {
		fields := make(map[string]string, len(verr.Fields))
		for f, key := range verr.Fields {
			fields[f] = s.tr.T(key)
		}
		return fields, true
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return s.v.translate(vErrs), true
	}
	return nil, false
}

// writeError renders err as {"detail": ...} or, for field errors, {"errors": {...}}.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fields, ok := s.fieldErrors(err); ok {
		writeJSON(w, http.StatusBadRequest, errorsResponse{Errors: fields})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeDetail(w, status, detailKey(err))
}
