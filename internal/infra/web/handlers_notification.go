package web

import (
	"net/http"
	"strconv"
)

const defaultInboxLimit = 50

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultInboxLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	list, err := s.notifications.ListInbox(r.Context(), userFrom(r.Context()).ID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) readNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkRead(r.Context(), userFrom(r.Context()).ID, s.param(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := s.notifications.MarkAllRead(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.notifications.GetPreferences(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceResponse(p))
}

func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	uid := userFrom(r.Context()).ID
	p, err := s.notifications.GetPreferences(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.apply(p)
	p, err = s.notifications.UpdatePreferences(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreferenceResponse(p))
}
