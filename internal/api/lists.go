package api

import (
	"net/http"

	"varologs/internal/catalog"
)

type addListItemRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

func (s *server) handleListLists(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt64(r, "user_id")
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	lists, err := s.store.Lists(r.Context(), userID)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lists)
}

func (s *server) handleGetList(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := s.store.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var in catalog.ListInput
	if !s.decodeValid(w, r, &in) {
		return
	}
	list, err := s.store.CreateList(r.Context(), in)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, list)
}

func (s *server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var in catalog.ListUpdate
	if !s.decodeValid(w, r, &in) {
		return
	}
	list, err := s.store.UpdateList(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteList(r.Context(), id); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req addListItemRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	if err := s.store.AddToList(r.Context(), id, req.ItemID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := s.pathID(w, r, "itemID")
	if !ok {
		return
	}
	if err := s.store.RemoveFromList(r.Context(), id, itemID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
