package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"walkhub/internal/apperrors"
	"walkhub/internal/config"
	"walkhub/internal/models"
	"walkhub/internal/stats"
	"walkhub/internal/store"
)

// StatsHandler serves the AGM report and the walk-admin surface.
type StatsHandler struct {
	Engine *stats.Engine
	Store  *store.Store
	Cfg    *config.Config
}

func NewStatsHandler(engine *stats.Engine, st *store.Store, cfg *config.Config) *StatsHandler {
	return &StatsHandler{Engine: engine, Store: st, Cfg: cfg}
}

// debugLog logs a message only if debug mode is enabled
func (h *StatsHandler) debugLog(format string, args ...any) {
	if h.Cfg.Debug {
		log.Printf(format, args...)
	}
}

// writeJSON is a helper to write JSON responses
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError is a helper to write error responses. Failures keep the
// original error message for diagnosis; nothing degrades silently.
func writeError(w http.ResponseWriter, err error) {
	var status int

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUpstream):
		status = http.StatusBadGateway
		log.Printf("Upstream error: %v", err)
	default:
		status = http.StatusInternalServerError
		log.Printf("Internal error: %v", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type agmStatsRequest struct {
	FromDate int64 `json:"fromDate"`
	ToDate   int64 `json:"toDate"`
}

// AGMStats computes the year-comparison report for the requested range.
func (h *StatsHandler) AGMStats(w http.ResponseWriter, r *http.Request) {
	var req agmStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError{Field: "body", Message: "malformed JSON body"})
		return
	}
	if req.FromDate <= 0 || req.ToDate <= 0 {
		writeError(w, apperrors.ValidationError{Field: "fromDate/toDate", Message: "epoch millisecond dates are required"})
		return
	}
	if req.FromDate >= req.ToDate {
		writeError(w, apperrors.ValidationError{Field: "fromDate/toDate", Message: "fromDate must precede toDate"})
		return
	}

	h.debugLog("AGM stats request: from=%d to=%d", req.FromDate, req.ToDate)
	resp, err := h.Engine.Run(r.Context(), req.FromDate, req.ToDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// EarliestDate returns the oldest known walk, social event or paid expense
// date across all history.
func (h *StatsHandler) EarliestDate(w http.ResponseWriter, r *http.Request) {
	earliest, err := h.Engine.EarliestDate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"earliestDate": earliest})
}

// EventStats returns per-bucket record counts annotated with duplicate
// counts from the duplicate detector.
func (h *StatsHandler) EventStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.EventStatsRows(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	keys, err := h.Store.EventKeys(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	duplicates := stats.CountDuplicates(keys)
	for i := range rows {
		bucket := stats.DuplicateBucket{
			ItemType:    rows[i].ItemType,
			GroupCode:   rows[i].GroupCode,
			InputSource: rows[i].InputSource,
		}
		rows[i].DuplicateCount = duplicates[bucket]
	}

	h.debugLog("Event stats: %d buckets, %d with duplicates", len(rows), len(duplicates))
	writeJSON(w, http.StatusOK, rows)
}

type bulkRequest struct {
	ItemType     string `json:"itemType"`
	GroupCode    string `json:"groupCode"`
	InputSource  string `json:"inputSource"`
	NewGroupCode string `json:"newGroupCode,omitempty"`
	NewGroupName string `json:"newGroupName,omitempty"`
}

func (h *StatsHandler) authorizeAdmin(r *http.Request) error {
	if h.Cfg.AdminAPIKey == "" {
		return nil
	}
	if r.Header.Get("Authorization") != "Bearer "+h.Cfg.AdminAPIKey {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func decodeBulkRequest(r *http.Request) (bulkRequest, error) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperrors.ValidationError{Field: "body", Message: "malformed JSON body"}
	}
	if req.ItemType == "" || req.GroupCode == "" || req.InputSource == "" {
		return req, apperrors.ValidationError{Field: "itemType/groupCode/inputSource", Message: "bucket key is required"}
	}
	if req.ItemType != models.ItemTypeWalk && req.ItemType != models.ItemTypeGroupEvent {
		return req, apperrors.ValidationError{Field: "itemType", Message: "unknown item type"}
	}
	return req, nil
}

// BulkDelete removes every event in one stats bucket.
func (h *StatsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	req, err := decodeBulkRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	affected, err := h.Store.BulkDelete(r.Context(), req.ItemType, req.GroupCode, req.InputSource)
	if err != nil {
		writeError(w, err)
		return
	}
	h.debugLog("Bulk delete: %s/%s/%s removed %d events", req.ItemType, req.GroupCode, req.InputSource, affected)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": affected})
}

// BulkUpdate reassigns every event in one stats bucket to a new group.
func (h *StatsHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	if err := h.authorizeAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	req, err := decodeBulkRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.NewGroupCode == "" {
		writeError(w, apperrors.ValidationError{Field: "newGroupCode", Message: "new group code is required"})
		return
	}

	affected, err := h.Store.BulkUpdateGroup(r.Context(), req.ItemType, req.GroupCode, req.InputSource, req.NewGroupCode, req.NewGroupName)
	if err != nil {
		writeError(w, err)
		return
	}
	h.debugLog("Bulk update: %s/%s/%s moved %d events to %s", req.ItemType, req.GroupCode, req.InputSource, affected, req.NewGroupCode)
	writeJSON(w, http.StatusOK, map[string]int64{"updated": affected})
}
