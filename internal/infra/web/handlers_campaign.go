package web

import "net/http"

func (s *Server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := s.campaigns.List(r.Context(), userFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]campaignResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCampaignResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.Get(r.Context(), userFrom(r.Context()), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(c))
}

// createCampaign dispatches immediately unless schedule_at is in the future.
func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.campaigns.Create(r.Context(), userFrom(r.Context()), req.toModel())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampaignResponse(c))
}

func (s *Server) dispatchCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.Dispatch(r.Context(), userFrom(r.Context()), s.param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignResponse(c))
}
