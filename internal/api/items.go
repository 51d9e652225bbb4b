package api

import (
	"net/http"

	"varologs/internal/catalog"
	"varologs/internal/media"
)

func (s *server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.ItemFilter{
		Search: q.Get("search"),
		Status: catalog.ReviewStatus(q.Get("status")),
	}
	if raw := q.Get("type"); raw != "" {
		t, err := media.Parse(raw)
		if err != nil {
			s.writeServiceError(r.Context(), w, err)
			return
		}
		filter.Type = t
	}
	if filter.Status != "" && !filter.Status.Valid() {
		s.writeError(w, http.StatusBadRequest, "unknown status "+string(filter.Status))
		return
	}
	var err error
	if filter.UserID, err = queryInt64(r, "user_id"); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	items, err := s.store.Items(r.Context(), filter)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.store.ItemDetail(r.Context(), id)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in catalog.ItemInput
	if !s.decodeValid(w, r, &in) {
		return
	}
	item, created, err := s.store.CreateItem(r.Context(), in)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, item)
}

func (s *server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var in catalog.ItemInput
	if !s.decode(w, r, &in) {
		return
	}
	// Type is immutable; fill it so the shared input rules apply.
	existing, err := s.store.Item(r.Context(), id)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	in.Type = existing.Type
	if err := s.validator.Validate(in); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	item, err := s.store.UpdateItem(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteItem(r.Context(), id); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleUpsertReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var in catalog.ReviewInput
	if !s.decodeValid(w, r, &in) {
		return
	}
	review, err := s.store.UpsertReview(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, review)
}

type deleteReviewRequest struct {
	UserID int64 `json:"user_id"`
}

// handleDeleteReview accepts user_id in the body or the query string.
func (s *server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req deleteReviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		userID, err := queryInt64(r, "user_id")
		if err != nil {
			s.writeServiceError(r.Context(), w, err)
			return
		}
		if userID == nil {
			s.writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		req.UserID = *userID
	}
	if err := s.store.DeleteReview(r.Context(), id, req.UserID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
