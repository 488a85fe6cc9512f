package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/storedb"
)

// handleListActivity lists activity entries. Query parameters follow the
// json-server convention the client speaks: _sort (only "timestamp"),
// _order ("asc" default, or "desc") and _limit. contactName filters by exact
// name.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if sortBy := q.Get("_sort"); sortBy != "" && sortBy != "timestamp" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "_sort must be timestamp")
		return
	}

	query := storedb.ActivityQuery{ContactName: q.Get("contactName"), Order: storedb.OrderAsc}
	switch q.Get("_order") {
	case "", "asc":
	case "desc":
		query.Order = storedb.OrderDesc
	default:
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "_order must be asc or desc")
		return
	}

	query.Limit = s.config.MaxActivityPage
	if v := q.Get("_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "_limit must be a positive integer")
			return
		}
		query.Limit = min(n, s.config.MaxActivityPage)
	}

	entries, err := s.store.ListActivity(r.Context(), query)
	if err != nil {
		logFor(r.Context()).Error("list activity", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to list activity")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type appendActivityRequest struct {
	activityRequest
	Timestamp time.Time `json:"timestamp"`
}

// handleAppendActivity appends one entry. The stored timestamp may be moved
// forward so that entries stay strictly ordered.
func (s *Server) handleAppendActivity(w http.ResponseWriter, r *http.Request) {
	var req appendActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := s.store.AppendActivity(r.Context(), models.ActivityLogEntry{
		Action:      models.ActionType(req.Action),
		ContactName: req.ContactName,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		logFor(r.Context()).Error("append activity", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to append activity")
		return
	}

	s.metrics.RecordActivity(string(e.Action))
	writeJSON(w, http.StatusCreated, e)
}
