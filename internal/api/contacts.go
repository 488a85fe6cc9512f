package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/storedb"
)

// decodeBody decodes and validates a JSON request body. On failure it writes
// the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return false
	}
	if err := requestValidate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// writeStoreError maps storedb errors onto HTTP responses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var conflict *storedb.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.metrics.RecordConflict(conflict.Field)
		writeError(w, http.StatusConflict, ErrCodeConflict, conflictMessage(conflict.Field))
	case errors.Is(err, storedb.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "contact not found")
	default:
		logFor(r.Context()).Error(op, "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, fmt.Sprintf("failed to %s", op))
	}
}

func conflictMessage(field string) string {
	if field == "phone" {
		return "phone is already in use"
	}
	return "email already exists"
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "list contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetContact(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleCreateContact creates a contact. New contacts always start
// unfavorited; a favorite flag in the body is ignored.
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.store.CreateContact(r.Context(), models.ContactDraft{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
	})
	if err != nil {
		s.writeStoreError(w, r, "create contact", err)
		return
	}

	s.metrics.RecordMutation("create")
	logFor(r.Context()).Info("contact created", "id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.store.UpdateContact(r.Context(), r.PathValue("id"), models.Contact{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Favorite: req.Favorite,
	})
	if err != nil {
		s.writeStoreError(w, r, "update contact", err)
		return
	}

	s.metrics.RecordMutation("update")
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePatchContact(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.store.PatchContact(r.Context(), r.PathValue("id"), models.ContactPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Favorite: req.Favorite,
	})
	if err != nil {
		s.writeStoreError(w, r, "patch contact", err)
		return
	}

	op := "patch"
	if req.Favorite != nil && req.Name == nil && req.Email == nil && req.Phone == nil && req.Company == nil {
		op = "favorite"
	}
	s.metrics.RecordMutation(op)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.store.DeleteContact(r.Context(), id); err != nil {
		s.writeStoreError(w, r, "delete contact", err)
		return
	}

	s.metrics.RecordMutation("delete")
	logFor(r.Context()).Info("contact deleted", "id", id)
	writeJSON(w, http.StatusOK, struct{}{})
}
